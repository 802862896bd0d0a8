package config

// Version is the release stamped into binaries with -ldflags "-X".
var Version = "dev"
