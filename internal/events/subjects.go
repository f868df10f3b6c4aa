package events

const (
	SubjectSurveySeeded = "poverty.survey.seeded"

	StreamName   = "POVERTY_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunStarted(runID string) string   { return "poverty.run." + runID + ".started" }
func SubjectRunCompleted(runID string) string { return "poverty.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "poverty.run." + runID + ".failed" }

func SubjectCellScored(cellID string) string  { return "poverty.cell." + cellID + ".scored" }
func SubjectCellFlipped(cellID string) string { return "poverty.cell." + cellID + ".flipped" }
