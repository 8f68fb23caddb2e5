package domain

// VisualizationStyle selects the look of a generated knowledge image.
type VisualizationStyle string

// Available visualisation styles.
const (
	StyleEducational VisualizationStyle = "educational"
	StyleDiagram     VisualizationStyle = "diagram"
	StyleMindmap     VisualizationStyle = "mindmap"
	StyleInfographic VisualizationStyle = "infographic"
)

// IsValid returns true if the style is recognised.
func (s VisualizationStyle) IsValid() bool {
	switch s {
	case StyleEducational, StyleDiagram, StyleMindmap, StyleInfographic:
		return true
	default:
		return false
	}
}

// Description describes the style to an image model. Unknown styles
// fall back to the educational description.
func (s VisualizationStyle) Description() string {
	switch s {
	case StyleDiagram:
		return "a professional flowchart or architecture diagram with uniform boxes and connecting lines"
	case StyleMindmap:
		return "a mind map radiating outward from a central idea, layer by layer"
	case StyleInfographic:
		return "an infographic using charts, statistics and visual elements"
	default:
		return "a clean educational illustration using simple icons, boxes and arrows to show how concepts relate"
	}
}

// Aspect ratios accepted by image generation.
const (
	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
	AspectSquare    = "1:1"
)

// ValidAspectRatio reports whether ratio is one the image models accept.
func ValidAspectRatio(ratio string) bool {
	switch ratio {
	case "1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9":
		return true
	default:
		return false
	}
}

// Image is a generated picture with a short caption.
type Image struct {
	Data        []byte
	MIMEType    string
	Description string
}

// ConversationMessage is one turn of a chat transcript.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecentUserMessages returns the content of the last n user turns, oldest first.
func RecentUserMessages(history []ConversationMessage, n int) []string {
	var msgs []string
	for _, m := range history {
		if m.Role == "user" && m.Content != "" {
			msgs = append(msgs, m.Content)
		}
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}

// Topic is a recommended visualisation or chat prompt.
type Topic struct {
	// Type is overview, concept or chapter for visualisations, and
	// summary, concept, qa or review for chat.
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Prompt is sent verbatim to image generation or to ask.
	Prompt string `json:"prompt"`
}

// AnalysisTask selects what Analyze does with a document's text.
type AnalysisTask string

// Available analysis tasks.
const (
	TaskSummarize         AnalysisTask = "summarize"
	TaskExtractKeyPoints  AnalysisTask = "extract_key_points"
	TaskGenerateQuestions AnalysisTask = "generate_questions"
)

// IsValid returns true if the task is recognised.
func (t AnalysisTask) IsValid() bool {
	switch t {
	case TaskSummarize, TaskExtractKeyPoints, TaskGenerateQuestions:
		return true
	default:
		return false
	}
}

// Keyword is a scored term produced by keyword extraction.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}
