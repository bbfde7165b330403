// export_test.go exports private functions for white-box testing.
package forge

// DetectPlatformFor runs platform detection for a given GOOS and GOARCH.
var DetectPlatformFor = detectPlatform
