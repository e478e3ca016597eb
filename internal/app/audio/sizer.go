package audio

import "math"

const (
	// NormalizedByteRate is the byte rate of 16 kHz, 16-bit, mono PCM.
	NormalizedByteRate int64 = 16000 * 2 * 1

	MiB int64 = 1 << 20

	// safetyMargin keeps segments under the budget once the WAV header and
	// container overhead are added.
	safetyMargin = 0.95
)

// SegmentDuration returns the longest segment length in whole seconds whose
// payload at bytesPerSecond stays under budgetBytes. The result is at least 1.
func SegmentDuration(budgetBytes, bytesPerSecond int64) int {
	if bytesPerSecond <= 0 {
		bytesPerSecond = NormalizedByteRate
	}
	seconds := int(math.Floor(float64(budgetBytes) / float64(bytesPerSecond) * safetyMargin))
	if seconds < 1 {
		return 1
	}
	return seconds
}

// SegmentBytes is the PCM payload of a normalized segment of the given length.
func SegmentBytes(seconds int) int64 {
	return int64(seconds) * NormalizedByteRate
}
