package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptGrounding is the system instruction for grounded answers.
	// It has no placeholders.
	PromptGrounding = "grounding"

	// PromptAnswer wraps retrieved context and the question.
	// Placeholders: %s (context), %s (question).
	PromptAnswer = "answer"

	// PromptVisualPlan plans the content of a knowledge image.
	// Placeholders: %s (topic), %s (background section).
	PromptVisualPlan = "visual_plan"

	// PromptVisualPlanSystem is the planner's system instruction.
	PromptVisualPlanSystem = "visual_plan_system"

	// PromptVisualRender turns a plan into an image prompt.
	// Placeholders: %s (style description), %s (plan).
	PromptVisualRender = "visual_render"

	// PromptStudyNotes renders a study notes card.
	// Placeholders: %s (title), %s (content).
	PromptStudyNotes = "study_notes"

	// PromptConceptMap renders a concept map.
	// Placeholders: %s (central topic), %s (concept list).
	PromptConceptMap = "concept_map"

	// PromptRecommendVisual asks for visualisation topics as JSON.
	// Placeholders: %s (document samples), %s (recent questions), %s (keywords).
	PromptRecommendVisual = "recommend_visual"

	// PromptRecommendChat asks for chat topics as JSON.
	// Placeholders: %s (document samples), %s (recent questions).
	PromptRecommendChat = "recommend_chat"

	// PromptRecommendSystem is the recommender's system instruction.
	PromptRecommendSystem = "recommend_system"

	// PromptSummarize, PromptKeyPoints and PromptQuestions drive document
	// analysis. Placeholder: %s (content).
	PromptSummarize = "summarize"
	PromptKeyPoints = "extract_key_points"
	PromptQuestions = "generate_questions"
)

// defaultPrompts contains the built-in templates.
var defaultPrompts = map[string]string{
	PromptGrounding: `You are a study assistant. Answer questions using only the knowledge base context you are given.
If the context does not contain the answer, say so plainly instead of guessing.
Cite the sources you used by their filename, for example [Source 1: notes.pdf].
Keep answers clear and well structured.`,

	PromptAnswer: `# Knowledge base
%s

# Question
%s

Answer the question using the knowledge base above. If the knowledge base does not cover it, say that the uploaded materials do not contain the information.`,

	PromptVisualPlanSystem: `You are an instructional designer who plans educational infographics. Reply with a concise plain-text plan, no markdown code fences.`,

	PromptVisualPlan: `Plan a single educational image about the topic below.

Topic: %s
%s
Provide:
1. A short title
2. 3 to 6 core concept nodes
3. The relations between them, written as "A → B: relation"
4. One short note per concept
5. A suggested layout`,

	PromptVisualRender: `Create an educational image.

Style: %s

Content plan:
%s

Design requirements:
- All text must be clear and legible
- Use a clean, well balanced layout
- Make the key ideas easy to remember`,

	PromptStudyNotes: `Create a study notes card titled "%s".

Content:
%s

Design requirements:
- Card layout with a soft gradient background
- Highlight key terms
- Readable on a phone screen`,

	PromptConceptMap: `Create a concept map with "%s" as the central topic.

Related concepts:
%s

Connect each concept to the centre with a labelled edge. Keep text short and legible.`,

	PromptRecommendVisual: `Based on the study materials and questions below, suggest 5 topics that would make good knowledge visualisations.

Document samples:
%s

Recent questions:
%s

Frequent keywords:
%s

Return a JSON array of objects with the fields "title", "description", "type" (one of overview, concept, chapter) and "prompt".`,

	PromptRecommendChat: `Based on the study materials and questions below, suggest 4 questions the student could ask next.

Document samples:
%s

Recent questions:
%s

Return a JSON array of objects with the fields "title", "description", "type" (one of summary, concept, qa, review) and "prompt".`,

	PromptRecommendSystem: `You recommend study topics. Only return a valid JSON array.`,

	PromptSummarize: `Summarize the following study material. Cover the main ideas in a few short paragraphs.

%s`,

	PromptKeyPoints: `Extract the key points from the following study material as a bulleted list.

%s`,

	PromptQuestions: `Write 5 exam-style questions with short answers based on the following study material.

%s`,
}

// DefaultPrompt returns the built-in template for name.
// Stores fall back to these when no override exists.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
