package models

// Tab ids of the main interface.
const (
	TabSchedule  = "schedule"
	TabTracking  = "tracking"
	TabAnalytics = "analytics"
)

type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Tabs lists the main interface tabs in display order.
func Tabs() []Tab {
	return []Tab{
		{ID: TabSchedule, Label: "Smart Scheduling"},
		{ID: TabTracking, Label: "Live Tracking"},
		{ID: TabAnalytics, Label: "Analytics"},
	}
}

// Insight is one static "Smart Insights" card.
type Insight struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func Insights() []Insight {
	return []Insight{
		{
			Title:  "Customer Preference Detected",
			Detail: "This customer typically accepts deliveries between 2-4 PM on weekdays",
		},
		{
			Title:  "Traffic Optimization",
			Detail: "Route efficiency is 23% better during recommended time slots",
		},
	}
}

// Account is the header's signed-in account block.
type Account struct {
	Email   string `json:"email"`
	Initial string `json:"initial"`
}

// Shell describes the page chrome rendered around the tabs.
type Shell struct {
	Brand       string            `json:"brand"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Tabs        []Tab             `json:"tabs"`
	ActiveTab   string            `json:"activeTab"`
	Account     *Account          `json:"account"`
	Routes      map[string]string `json:"routes"`
}
