package model

// VoiceActor is static metadata for one synthesized podcast voice.
type VoiceActor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Gender      string   `json:"gender"`
	Accent      string   `json:"accent"`
	Tags        []string `json:"tags"`
	Preview     string   `json:"preview"`
}

// SpeedOption is one playback-speed choice offered by the podcast player.
type SpeedOption struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// VoiceActors lists the voices available for podcast synthesis. The set is
// fixed at compile time, matching what the speech backend supports.
var VoiceActors = []VoiceActor{
	{
		ID:          "host",
		Name:        "Brian (Host)",
		Description: "Professional male voice for podcast host",
		Gender:      "male",
		Accent:      "american",
		Tags:        []string{"professional", "clear", "male", "host"},
		Preview:     "Welcome to the podcast! I'm your host, ready to guide you through today's discussion.",
	},
	{
		ID:          "guest",
		Name:        "Amy (Guest)",
		Description: "Engaging female voice for podcast guest",
		Gender:      "female",
		Accent:      "british",
		Tags:        []string{"engaging", "conversational", "female", "guest"},
		Preview:     "Hi everyone! I'm excited to share my insights and join this conversation.",
	},
}

// SpeedOptions lists playback speeds the player exposes.
var SpeedOptions = []SpeedOption{
	{Value: 0.8, Label: "Slow (0.8x)"},
	{Value: 1.0, Label: "Normal (1.0x)"},
	{Value: 1.25, Label: "Fast (1.25x)"},
}
