package stats

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/db"
)

// Tab selects the list of surveys shown on the user dashboard.
type Tab string

const (
	AvailableTab Tab = "available"
	FavoritesTab Tab = "favorites"
	CompletedTab Tab = "completed"
)

// ParseTab returns the tab named s, defaulting to the available one.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case FavoritesTab, CompletedTab:
		return Tab(s)
	}
	return AvailableTab
}

// UserDashboard is what a survey taker sees after logging in.
type UserDashboard struct {
	Available     int             `json:"available"`
	Favorites     int             `json:"favorites"`
	Completed     int             `json:"completed"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	Tab           Tab             `json:"tab"`
	Surveys       []db.Survey     `json:"surveys"`
}

// ForUser builds the dashboard of the user. Available and favorite lists
// only hold active surveys; the completed list holds every survey the user
// completed. The search term filters the selected list by title,
// description or company name, case-insensitively.
func ForUser(user *db.User, surveys []db.Survey, tab Tab, search string) *UserDashboard {
	var available, favorites, completed []db.Survey
	earnings := decimal.Zero
	for i := range surveys {
		s := surveys[i]
		if user.HasCompleted(s.ID) {
			completed = append(completed, s)
			earnings = earnings.Add(s.RewardPerResponse)
		}
		if !s.IsActive {
			continue
		}
		available = append(available, s)
		if user.HasFavorite(s.ID) {
			favorites = append(favorites, s)
		}
	}
	dashboard := &UserDashboard{
		Available:     len(available),
		Favorites:     len(favorites),
		Completed:     len(completed),
		TotalEarnings: earnings,
		Tab:           tab,
	}
	var list []db.Survey
	switch tab {
	case FavoritesTab:
		list = favorites
	case CompletedTab:
		list = completed
	default:
		dashboard.Tab = AvailableTab
		list = available
	}
	dashboard.Surveys = Search(list, search)
	return dashboard
}

// Search returns the surveys whose title, description or company name
// contains term, ignoring case. An empty term matches everything.
func Search(surveys []db.Survey, term string) []db.Survey {
	term = strings.ToLower(strings.TrimSpace(term))
	result := []db.Survey{}
	for i := range surveys {
		if term == "" ||
			strings.Contains(strings.ToLower(surveys[i].Title), term) ||
			strings.Contains(strings.ToLower(surveys[i].Description), term) ||
			strings.Contains(strings.ToLower(surveys[i].CompanyName), term) {
			result = append(result, surveys[i])
		}
	}
	return result
}

// Summary is the public overview of the survey list page.
type Summary struct {
	ActiveSurveys  int             `json:"activeSurveys"`
	TotalRewards   decimal.Decimal `json:"totalRewards"`
	TotalResponses int             `json:"totalResponses"`
}

// Public summarizes the active surveys: how many there are, the sum of
// their rewards per response and the responses they collected.
func Public(surveys []db.Survey) Summary {
	summary := Summary{TotalRewards: decimal.Zero}
	for i := range surveys {
		if !surveys[i].IsActive {
			continue
		}
		summary.ActiveSurveys++
		summary.TotalRewards = summary.TotalRewards.Add(surveys[i].RewardPerResponse)
		summary.TotalResponses += len(surveys[i].Responses)
	}
	return summary
}
