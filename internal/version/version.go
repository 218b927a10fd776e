package version

// AppVersion is overridden at build time with
// -ldflags "-X r2dash/internal/version.AppVersion=..."
var AppVersion = "0.1.0"
