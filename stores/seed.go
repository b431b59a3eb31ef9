package stores

import (
	"challenge-streak-system/models"
)

// SeedChallenges is the starter catalog, inserted idempotently on boot.
var SeedChallenges = []models.Challenge{
	{
		Title:       "Go for a 10-minute run",
		Description: "Lace up and run for at least ten minutes. A photo of your route, your shoes mid-run, or your tracker screen all work.",
		Category:    models.CategoryFitness,
		Difficulty:  models.DifficultyEasy,
		Points:      10,
		IsDaily:     true,
	},
	{
		Title:       "Cook a meal from scratch",
		Description: "No takeout, no microwave dinners. Snap your plated result in your own kitchen.",
		Category:    models.CategoryFood,
		Difficulty:  models.DifficultyMedium,
		Points:      20,
		IsDaily:     true,
	},
	{
		Title:       "Watch the sunrise",
		Description: "Get up early and photograph the sunrise from wherever you are.",
		Category:    models.CategoryAdventure,
		Difficulty:  models.DifficultyMedium,
		Points:      15,
		IsDaily:     true,
	},
	{
		Title:       "Sketch something in front of you",
		Description: "Five minutes, any medium. Photograph the sketch with the subject in frame if you can.",
		Category:    models.CategoryCreativity,
		Difficulty:  models.DifficultyEasy,
		Points:      10,
		IsDaily:     true,
	},
	{
		Title:       "Read a chapter of a book",
		Description: "A real chapter of a real book. Show the open book and where you got to.",
		Category:    models.CategoryLearning,
		Difficulty:  models.DifficultyEasy,
		Points:      10,
		IsDaily:     true,
	},
	{
		Title:       "Write in a journal for 5 minutes",
		Description: "Fresh handwriting on today's page.",
		Category:    models.CategoryMindfulness,
		Difficulty:  models.DifficultyEasy,
		Points:      10,
		IsDaily:     true,
	},
	{
		Title:       "Volunteer for an hour",
		Description: "Give an hour to a cause near you and capture the scene.",
		Category:    models.CategorySocial,
		Difficulty:  models.DifficultyHard,
		Points:      50,
		IsDaily:     false,
	},
	{
		Title:       "Hike a new trail",
		Description: "Somewhere you've never been. Photograph the trailhead or a viewpoint.",
		Category:    models.CategoryAdventure,
		Difficulty:  models.DifficultyHard,
		Points:      40,
		IsDaily:     false,
	},
}
