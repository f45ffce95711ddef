package email

const (
	subjectAssignmentFmt     = "New lead assigned: %s"
	subjectDigestTodayFmt    = "%d lead(s) to follow up today"
	subjectDigestTomorrowFmt = "%d lead(s) to follow up tomorrow"
	subjectWelcome           = "Your Kronus CRM account"
)
