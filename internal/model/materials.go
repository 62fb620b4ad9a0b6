package model

import "time"

// WeeklyMaterials is the single current-week programming document: one PDF
// plus one resolved video link per weekday.  The row is upserted under a
// constant identifier so there is never more than one current week.
type WeeklyMaterials struct {
    Identifier  string            `json:"-"`
    WeekNumber  int               `json:"week_number"`
    PDFLink     string            `json:"pdf_link"`
    VideoLinks  map[string]string `json:"video_links"`
    LastUpdated time.Time         `json:"last_updated"`
}

// CurrentWeekIdentifier keys the single materials row.
const CurrentWeekIdentifier = "current_week"
