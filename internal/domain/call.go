package domain

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

// ParseCallType defaults to video, as the web client does.
func ParseCallType(raw string) CallType {
	if CallType(raw) == CallAudio {
		return CallAudio
	}
	return CallVideo
}
