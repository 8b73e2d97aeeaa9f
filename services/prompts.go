package services

import (
	"fmt"
	"strings"
)

func analysisPrompt(userPrompt string) string {
	return fmt.Sprintf(`Analyze the following user request for generating personalized learning audio snippets. Extract the following information and provide it ONLY as a JSON object:

1. "total_time_minutes": The total available time explicitly mentioned (integer). Output 0 if not mentioned. Prioritize this value if provided.
2. "requested_topics": A list of strings with the CORE concepts or questions the user is explicitly interested in. If the user mentions a broad topic (e.g. "cars", "AI"), list just that core concept. Do not break it into sub-topics unless the user explicitly listed multiple distinct items. Output [] if none are stated. Plain text only, no sound effects or special characters.
3. "requires_suggestion": true if the user explicitly asks for suggestions ("suggest something", "what else?") or uses phrases implying they want topics chosen for them ("surprise me", "teach me something interesting"). Otherwise false.

User Request: %q

Example for "surprise me":
{"total_time_minutes": 0, "requested_topics": [], "requires_suggestion": true}

Example for "20 mins on cars":
{"total_time_minutes": 20, "requested_topics": ["Cars"], "requires_suggestion": false}

Example for "10 mins on AI and photosynthesis":
{"total_time_minutes": 10, "requested_topics": ["AI", "Photosynthesis"], "requires_suggestion": false}

Example for "Tell me about space exploration for 15 minutes and suggest something else":
{"total_time_minutes": 15, "requested_topics": ["Space Exploration"], "requires_suggestion": true}

Provide ONLY the JSON object as the response.`, userPrompt)
}

func singleTopicPrompt(userPrompt string, history []string) string {
	past := "None provided yet."
	if len(history) > 0 {
		past = strings.Join(history, ", ")
	}
	return fmt.Sprintf(`The user provided the following request: %q
This request is vague, but they want to learn something new.

Their learning history from this session:
Past topics learned: %s

Infer their underlying interests from the request and the past topics (if any).
Suggest exactly ONE concise, engaging NEW learning topic that fits those interests but is DIFFERENT from every topic in the history list.
The topic must suit a single %d-minute audio explanation.

Examples (history ["Basics of black holes", "How stars are formed"]):
- "teach me something cool" -> The concept of gravitational waves
- "surprise me" -> What is dark matter?

Respond with ONLY the suggested topic as a plain string, without quotes or labels.`, userPrompt, past, SegmentMinutes)
}

func expandTopicsPrompt(topics []string, n int) string {
	subject := strings.Join(topics, ", ")
	return fmt.Sprintf(`The user wants to learn about "%[1]s" for a duration requiring %[2]d distinct %[3]d-minute segments.
Their request might be broad.

Generate a list of exactly %[2]d specific, engaging topic titles, each suitable for one %[3]d-minute audio snippet, that together cover "%[1]s".
- If "%[1]s" is broad (like "Cars", "AI", "History of Rome"), break it into logical sub-topics.
- If "%[1]s" already holds several related items, add further related topics until there are %[2]d.
- Keep the topics distinct from each other.
- Keep the titles concise and appealing for a learning playlist.

Provide ONLY a JSON list of exactly %[2]d topic strings.

Example (topics ["Cars"], 4 segments):
["History of the Automobile", "How Internal Combustion Engines Work", "The Rise of Electric Vehicles", "Future Trends in Automotive Tech"]`, subject, n, SegmentMinutes)
}

func relatedTopicsPrompt(topics []string, n int) string {
	return fmt.Sprintf(`Based on the user's interest in these topics: %s
Suggest %d additional, distinct learning topics they might find curious. Each must suit a %d-minute audio explanation and differ from the initial list.
Provide ONLY a JSON list of strings as the response. Example: ["Topic A", "Topic B"]`, strings.Join(topics, ", "), n, SegmentMinutes)
}

func scriptPrompt(topic, context string) string {
	return fmt.Sprintf(`You are writing an engaging audio learning script, like a short solo podcast episode.
The listener wants a clear, concise, interesting explanation that is easy to follow by ear.

Topic: %s
Context from web search:
---
%s
---

Write one continuous narration of about %d words (%d minutes at %d words per minute) covering the key aspects of the topic.
- Open with a brief, engaging hook.
- Explain the core concepts clearly and in a logical order.
- Use simple language; explain any jargon you need.
- Close with a short summary or a thought-provoking line.
- Keep the tone informative but conversational.
- Output ONLY the narration text, ready for text-to-speech. No titles, headings, markup, speaker labels, stage directions or notes.`, topic, context, TargetWordCount, SegmentMinutes, WordsPerMinute)
}
