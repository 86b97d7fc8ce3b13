package msgcat

// Key names one line of user-facing text as section.name.
type Key string

const (
	SessionHeader   Key = "session.header"
	SessionTurn     Key = "session.turn"
	SessionWaiting  Key = "session.waiting"
	SessionLoading  Key = "session.loading"
	SessionPending  Key = "session.pending"
	SessionSelected Key = "session.selected"

	ResultWhite Key = "result.white"
	ResultBlack Key = "result.black"
	ResultDraw  Key = "result.draw"
	ResultOther Key = "result.other"

	ErrorUnauthenticated Key = "error.unauthenticated"
	ErrorFinished        Key = "error.finished"
	ErrorInFlight        Key = "error.in_flight"
	ErrorSameSquare      Key = "error.same_square"
	ErrorMoveFailed      Key = "error.move_failed"
	ErrorFetchFailed     Key = "error.fetch_failed"
	ErrorGeneric         Key = "error.generic"

	UIHelp     Key = "ui.help"
	UIExported Key = "ui.exported"
)

// Keys lists every line the client renders. A catalog that lacks one of
// them fails to load, and overrides may only name these.
var Keys = []Key{
	SessionHeader, SessionTurn, SessionWaiting, SessionLoading, SessionPending, SessionSelected,
	ResultWhite, ResultBlack, ResultDraw, ResultOther,
	ErrorUnauthenticated, ErrorFinished, ErrorInFlight, ErrorSameSquare, ErrorMoveFailed, ErrorFetchFailed, ErrorGeneric,
	UIHelp, UIExported,
}

func known(k Key) bool {
	for _, want := range Keys {
		if want == k {
			return true
		}
	}
	return false
}
