package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// The seed dataset bootstraps an empty persistence layer: four demo surveys
// across three demo companies plus two demo survey takers. Every call
// returns fresh values.

func seedTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// SeedSurveys returns the demo surveys.
func SeedSurveys() []Survey {
	return []Survey{
		{
			ID:          "survey-1",
			Title:       "Customer Satisfaction Survey 2024",
			Description: "Help us understand how we can better serve our customers and improve our products and services.",
			CompanyID:   "comp-1",
			CompanyName: "TechCorp Solutions",
			Questions: []Question{
				{
					ID:       "q1",
					Type:     RatingQuestion,
					Question: "How satisfied are you with our overall service?",
					Options:  []string{"Very Dissatisfied", "Dissatisfied", "Neutral", "Satisfied", "Very Satisfied"},
					Required: true,
				},
				{
					ID:       "q2",
					Type:     MultipleChoice,
					Question: "Which of our products do you use most frequently?",
					Options:  []string{"Web Platform", "Mobile App", "API Services", "Desktop Software"},
					Required: true,
				},
				{
					ID:       "q3",
					Type:     TextQuestion,
					Question: "What improvements would you like to see in our products?",
				},
				{
					ID:       "q4",
					Type:     BooleanQuestion,
					Question: "Would you recommend our services to others?",
					Required: true,
				},
			},
			Responses: []SurveyResponse{
				{
					ID:       "resp-1",
					SurveyID: "survey-1",
					UserID:   "user-1",
					Answers: map[string]Answer{
						"q1": ChoiceAnswer("Satisfied"),
						"q2": ChoiceAnswer("Web Platform"),
						"q3": TextAnswer("Better mobile integration"),
						"q4": ChoiceAnswer("yes"),
					},
					CompletedAt: seedTime(2024, time.January, 16, 14, 30),
				},
				{
					ID:       "resp-2",
					SurveyID: "survey-1",
					UserID:   "user-2",
					Answers: map[string]Answer{
						"q1": ChoiceAnswer("Very Satisfied"),
						"q2": ChoiceAnswer("Mobile App"),
						"q3": TextAnswer("More customization options"),
						"q4": ChoiceAnswer("yes"),
					},
					CompletedAt: seedTime(2024, time.January, 17, 11, 15),
				},
			},
			CreatedAt:         seedTime(2024, time.January, 15, 9, 0),
			IsActive:          true,
			PackageType:       PremiumTier,
			MaxQuestions:      MaxQuestionsFor(PremiumTier),
			RewardPerResponse: decimal.NewFromInt(5),
		},
		{
			ID:          "survey-2",
			Title:       "Product Feature Feedback",
			Description: "Share your thoughts on our new features and help us prioritize future development.",
			CompanyID:   "comp-1",
			CompanyName: "TechCorp Solutions",
			Questions: []Question{
				{
					ID:       "q1",
					Type:     MultipleChoice,
					Question: "Which new feature interests you most?",
					Options:  []string{"AI Assistant", "Advanced Analytics", "Team Collaboration", "API Improvements"},
					Required: true,
				},
				{
					ID:       "q2",
					Type:     RatingQuestion,
					Question: "How important is mobile optimization to you?",
					Options:  []string{"Not Important", "Slightly Important", "Moderately Important", "Very Important", "Extremely Important"},
					Required: true,
				},
				{
					ID:       "q3",
					Type:     TextQuestion,
					Question: "What other features would you like to see?",
				},
			},
			Responses: []SurveyResponse{
				{
					ID:       "resp-3",
					SurveyID: "survey-2",
					UserID:   "user-3",
					Answers: map[string]Answer{
						"q1": ChoiceAnswer("AI Assistant"),
						"q2": ChoiceAnswer("Very Important"),
						"q3": TextAnswer("Better reporting tools"),
					},
					CompletedAt: seedTime(2024, time.February, 2, 9, 45),
				},
			},
			CreatedAt:         seedTime(2024, time.February, 1, 13, 20),
			IsActive:          true,
			PackageType:       PremiumTier,
			MaxQuestions:      MaxQuestionsFor(PremiumTier),
			RewardPerResponse: decimal.NewFromInt(3),
		},
		{
			ID:          "survey-3",
			Title:       "Brand Awareness Study",
			Description: "Help us understand market perception and brand recognition in your industry.",
			CompanyID:   "comp-2",
			CompanyName: "Marketing Plus",
			Questions: []Question{
				{
					ID:       "q1",
					Type:     MultipleChoice,
					Question: "How did you first hear about our company?",
					Options:  []string{"Social Media", "Search Engine", "Word of Mouth", "Advertisement", "Other"},
					Required: true,
				},
				{
					ID:       "q2",
					Type:     RatingQuestion,
					Question: "How would you rate our brand compared to competitors?",
					Options:  []string{"Much Worse", "Worse", "About the Same", "Better", "Much Better"},
					Required: true,
				},
				{
					ID:       "q3",
					Type:     BooleanQuestion,
					Question: "Are you likely to continue using our services?",
					Required: true,
				},
			},
			Responses:         []SurveyResponse{},
			CreatedAt:         seedTime(2024, time.February, 20, 15, 0),
			IsActive:          true,
			PackageType:       StandardTier,
			MaxQuestions:      MaxQuestionsFor(StandardTier),
			RewardPerResponse: decimal.NewFromInt(4),
		},
		{
			ID:          "survey-4",
			Title:       "Market Research Survey",
			Description: "Quick survey to understand consumer preferences and market trends.",
			CompanyID:   "comp-3",
			CompanyName: "Startup Ventures",
			Questions: []Question{
				{
					ID:       "q1",
					Type:     MultipleChoice,
					Question: "What is your primary age group?",
					Options:  []string{"18-25", "26-35", "36-45", "46-55", "56+"},
					Required: true,
				},
				{
					ID:       "q2",
					Type:     MultipleChoice,
					Question: "Which industry do you work in?",
					Options:  []string{"Technology", "Healthcare", "Finance", "Education", "Other"},
					Required: true,
				},
				{
					ID:       "q3",
					Type:     TextQuestion,
					Question: "What challenges do you face in your daily work?",
				},
			},
			Responses: []SurveyResponse{
				{
					ID:       "resp-4",
					SurveyID: "survey-4",
					UserID:   "user-4",
					Answers: map[string]Answer{
						"q1": ChoiceAnswer("26-35"),
						"q2": ChoiceAnswer("Technology"),
						"q3": TextAnswer("Managing multiple projects efficiently"),
					},
					CompletedAt: seedTime(2024, time.March, 11, 16, 20),
				},
				{
					ID:       "resp-5",
					SurveyID: "survey-4",
					UserID:   "user-5",
					Answers: map[string]Answer{
						"q1": ChoiceAnswer("36-45"),
						"q2": ChoiceAnswer("Finance"),
						"q3": TextAnswer("Keeping up with regulatory changes"),
					},
					CompletedAt: seedTime(2024, time.March, 12, 10, 30),
				},
			},
			CreatedAt:         seedTime(2024, time.March, 10, 11, 0),
			IsActive:          true,
			PackageType:       BasicTier,
			MaxQuestions:      MaxQuestionsFor(BasicTier),
			RewardPerResponse: decimal.NewFromInt(2),
		},
	}
}

// SeedCompanies returns the demo companies owning the seed surveys.
func SeedCompanies() []Company {
	return []Company{
		{
			ID:           "comp-1",
			Name:         "TechCorp Solutions",
			Email:        "admin@techcorp.com",
			Subscription: PremiumTier,
			Surveys:      []string{"survey-1", "survey-2"},
			CreatedAt:    seedTime(2024, time.January, 15, 8, 30),
		},
		{
			ID:           "comp-2",
			Name:         "Marketing Plus",
			Email:        "team@marketingplus.com",
			Subscription: StandardTier,
			Surveys:      []string{"survey-3"},
			CreatedAt:    seedTime(2024, time.February, 20, 14, 15),
		},
		{
			ID:           "comp-3",
			Name:         "Startup Ventures",
			Email:        "hello@startupventures.com",
			Subscription: BasicTier,
			Surveys:      []string{"survey-4"},
			CreatedAt:    seedTime(2024, time.March, 10, 10, 45),
		},
	}
}

// SeedUsers returns the demo survey takers.
func SeedUsers() []User {
	return []User{
		{
			ID:               "user-1",
			Name:             "John Doe",
			Email:            "john@example.com",
			CreatedAt:        seedTime(2024, time.January, 10, 10, 0),
			FavoriteSurveys:  []string{"survey-1"},
			CompletedSurveys: []string{"survey-4"},
		},
		{
			ID:               "user-2",
			Name:             "Jane Smith",
			Email:            "jane@example.com",
			CreatedAt:        seedTime(2024, time.January, 15, 14, 30),
			FavoriteSurveys:  []string{"survey-2", "survey-3"},
			CompletedSurveys: []string{"survey-1"},
		},
	}
}
