package repository

type TicketFilter struct {
	Q        string
	Status   string
	Category string
	Limit    int
	Offset   int

	// Viewer scoping: students see their own tickets, committee members
	// their own plus tagged, admins their assigned plus scope matches,
	// super admins everything.
	ViewerID            string
	ViewerRole          string
	ViewerScopeCategory string
	ViewerScopeLocation string
}
