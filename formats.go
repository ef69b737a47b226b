//go:build !ios && !android && (amd64 || arm64)

package freenect

// RGBFormat represents the video pixel formats the driver can deliver.
type RGBFormat int32

// Video formats matching the driver's freenect_rgb_format values.
const (
	RGBFormatRGB   RGBFormat = 0 // 24-bit packed RGB
	RGBFormatBayer RGBFormat = 1 // Raw 8-bit Bayer pattern
)

// DepthFormat represents the depth bit formats the driver can deliver.
type DepthFormat int32

// Depth formats matching the driver's freenect_depth_format values.
const (
	DepthFormat11Bit       DepthFormat = 0 // 11-bit values in 16-bit words
	DepthFormat10Bit       DepthFormat = 1 // 10-bit values in 16-bit words
	DepthFormatPacked11Bit DepthFormat = 2 // 11-bit values, bit-packed
	DepthFormatPacked10Bit DepthFormat = 3 // 10-bit values, bit-packed
)

// LEDOption represents the LED states the driver supports.
type LEDOption int32

// LED states matching the driver's freenect_led_options values.
const (
	LEDOff            LEDOption = 0
	LEDGreen          LEDOption = 1
	LEDRed            LEDOption = 2
	LEDYellow         LEDOption = 3
	LEDBlinkYellow    LEDOption = 4
	LEDBlinkGreen     LEDOption = 5
	LEDBlinkRedYellow LEDOption = 6
)

// Frame geometry. Both sensors deliver 640x480.
const (
	FrameWidth  = 640
	FrameHeight = 480
	FramePixels = FrameWidth * FrameHeight

	// RGBFrameLen is the byte length of a packed RGB frame buffer.
	RGBFrameLen = FramePixels * 3

	// DepthFrameLen is the number of uint16 samples in a depth frame buffer.
	DepthFrameLen = FramePixels
)

// Accelerometer scale. The sensor reports signed counts at CountsPerG per
// standard gravity; the driver's MKS readout applies this conversion.
const (
	CountsPerG = 819
	GravityMKS = 9.80665
)
