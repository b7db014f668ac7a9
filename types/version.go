package types

// Version is the canonical project version (lockstep across all components).
const Version = "0.1.0"
