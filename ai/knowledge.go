package ai

import (
	"strings"
)

// ContextRule tells the vision model what evidence to look for in the photo
// for one family of challenges.
type ContextRule struct {
	Name        string
	Tags        []string
	Instruction string
}

// knowledgeBase is ordered: first tag match wins. The default rule has an
// empty tag set and is never matched directly, only returned as fallback.
var knowledgeBase = []ContextRule{
	{
		Name: "exercise",
		Tags: []string{"run", "jog", "workout", "gym", "exercise", "fitness", "yoga", "push-up", "pushup", "squat", "bike", "swim", "hike", "walk"},
		Instruction: "The photo should show physical activity or its immediate evidence: athletic clothing or shoes being worn, gym equipment in use, a workout space, a fitness tracker screen showing a completed activity, or an outdoor route. A stock photo, a screenshot of someone else's activity, or equipment merely lying unused does not count.",
	},
	{
		Name: "cooking",
		Tags: []string{"cook", "bake", "recipe", "meal", "kitchen", "food", "dish", "breakfast", "lunch", "dinner"},
		Instruction: "The photo should show a prepared dish or cooking in progress in a real kitchen setting: ingredients, cookware, or a plated result that looks home-made. Restaurant plating, packaging, or professional food photography suggests the meal was not prepared by the user.",
	},
	{
		Name: "outdoors",
		Tags: []string{"outdoor", "nature", "park", "sunrise", "sunset", "trail", "beach", "mountain", "garden", "adventure"},
		Instruction: "The photo should be taken outdoors and clearly show the natural setting named in the challenge. Indoor photos, photos of screens, or heavily edited imagery do not count.",
	},
	{
		Name: "social",
		Tags: []string{"friend", "social", "meet", "stranger", "conversation", "volunteer", "community", "compliment"},
		Instruction: "The photo should show a genuine social situation consistent with the challenge: other people present, an event, or a shared activity. Respect that faces may be turned away; look at the overall scene rather than requiring identifiable faces.",
	},
	{
		Name: "creative",
		Tags: []string{"draw", "paint", "sketch", "craft", "write", "poem", "creative", "art", "music", "instrument", "photo essay"},
		Instruction: "The photo should show a creative work in progress or a finished piece with signs of being hand-made by the user: visible tools, a work surface, or an imperfect personal result. Polished professional artwork or obvious internet images do not count.",
	},
	{
		Name: "learning",
		Tags: []string{"read", "book", "learn", "study", "course", "language", "chapter", "practice"},
		Instruction: "The photo should show study material actually in use: an open book, handwritten notes, a practice session. A closed book on a shelf or a screenshot of a course landing page is not sufficient.",
	},
	{
		Name: "mindfulness",
		Tags: []string{"meditat", "mindful", "journal", "gratitude", "breath", "relax", "unplug"},
		Instruction: "These challenges are hard to evidence directly. Accept a plausible setup photo: a meditation space, a journal with fresh handwriting, a device visibly put away. Be lenient on composition but strict on relevance.",
	},
	{
		Name:        "default",
		Tags:        nil,
		Instruction: "Judge whether the photo plausibly shows the described challenge being carried out by the person submitting it. Prefer rejecting an ambiguous photo over accepting an unrelated one.",
	},
}

// SelectContext maps a challenge's text onto one knowledge-base rule.
// Deterministic and total: lower-cases title+description+category, returns the
// first non-default rule with a substring tag match, else the default rule.
func SelectContext(title, description, category string) ContextRule {
	haystack := strings.ToLower(title + " " + description + " " + category)
	for _, rule := range knowledgeBase {
		if len(rule.Tags) == 0 {
			continue
		}
		for _, tag := range rule.Tags {
			if strings.Contains(haystack, tag) {
				return rule
			}
		}
	}
	return knowledgeBase[len(knowledgeBase)-1]
}
