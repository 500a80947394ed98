package llm

import (
	"fmt"

	"growthbot/internal/sanitize"
)

var replyAngles = map[string]string{
	"conversational": "Reply naturally, like a real person having a conversation. Be friendly and add your own perspective.",
	"questioning":    "Ask a thoughtful, specific question that deepens the conversation. Show genuine curiosity.",
	"agreeing":       "Agree with their point and add a fresh angle or example they haven't mentioned.",
	"contrasting":    "Respectfully present a different viewpoint or consideration. Be diplomatic and thoughtful.",
	"curious":        "Express genuine curiosity and ask for elaboration on a specific detail.",
	"supportive":     "Show support and offer a concrete insight or suggestion that adds value.",
	"practical":      "Offer one practical, concrete next step grounded in the tweet's subject.",
}

var responseModes = map[string]string{
	"statement": "Prefer a declarative statement with a concrete take. Do not end with a question unless necessary.",
	"question":  "Ask one focused, high-signal question.",
	"mixed":     "Mix statement and question naturally; avoid forcing a question every time.",
}

var postAngles = map[string]string{
	"practical":      "Share one practical technique or checklist readers can apply today.",
	"insights":       "Share a non-obvious insight backed by a concrete observation.",
	"critical":       "Challenge a common assumption in the niche, respectfully.",
	"educational":    "Teach one concept clearly with a brief example.",
	"conversational": "Start a genuine discussion with a specific question.",
}

const replySystem = `You reply to tweets. Sound like a real human, not a bot.
Never start with "That's interesting". No generic phrases like "Great point!" or "Totally agree!".
Vary sentence structure; each reply must be unique in style and wording.
Always include one concrete value element: an observation, a practical next step, a tradeoff or metric to watch, or a focused question.
Maximum 220 characters. No hashtags, no emojis, no links.`

const postSystem = `You write original tweets for a practitioner account.
Be specific and useful; avoid hype and filler. One clear idea per tweet.
Maximum 260 characters. No hashtags, no links.`

// ReplyPrompt builds the user prompt for a reply draft. Inputs are
// sanitized against prompt injection before interpolation.
func ReplyPrompt(tweetText, author, angle, mode string) string {
	angleInstr, ok := replyAngles[angle]
	if !ok {
		angleInstr = replyAngles["conversational"]
	}
	modeInstr, ok := responseModes[mode]
	if !ok {
		modeInstr = responseModes["mixed"]
	}
	return fmt.Sprintf("Tweet by @%s: %q\n\n%s\n%s\nWrite the reply text only.",
		sanitize.ForPrompt(author), sanitize.ForPrompt(tweetText), angleInstr, modeInstr)
}

// PostPrompt builds the user prompt for an original post draft.
func PostPrompt(topic, niche, angle string) string {
	angleInstr, ok := postAngles[angle]
	if !ok {
		angleInstr = postAngles["practical"]
	}
	return fmt.Sprintf("Topic: %s\nNiche: %s\n%s\nWrite the tweet text only.",
		sanitize.ForPrompt(topic), sanitize.ForPrompt(niche), angleInstr)
}
