package model

type FFProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
	} `json:"streams"`
}

// HasVideo reports whether any probed stream carries video.
func (o FFProbeOutput) HasVideo() bool {
	for _, s := range o.Streams {
		if s.CodecType == "video" {
			return true
		}
	}
	return false
}
