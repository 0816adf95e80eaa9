package pgntree

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is the game outcome from the Result tag. The zero value is an
// ongoing game and renders as "*".
type Result struct {
	Finished   bool
	WhiteScore int
	BlackScore int
}

// ParseResult reads a Result tag value. Anything that is not two
// dash-separated integer scores is treated as ongoing.
func ParseResult(value string) Result {
	if value == "*" {
		return Result{}
	}

	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return Result{}
	}
	white, err := strconv.Atoi(parts[0])
	if err != nil {
		return Result{}
	}
	black, err := strconv.Atoi(parts[1])
	if err != nil {
		return Result{}
	}

	return Result{Finished: true, WhiteScore: white, BlackScore: black}
}

func (r Result) String() string {
	if !r.Finished {
		return "*"
	}
	return fmt.Sprintf("%d-%d", r.WhiteScore, r.BlackScore)
}

// Header holds the seven conventional tag pairs. An empty field means the
// value is unknown and renders as the standard "?" sentinel.
type Header struct {
	Event  string
	Site   string
	Date   string
	Round  string
	White  string
	Black  string
	Result Result
}

const unknownDate = "????.??.??"

// Parse stores a recognized tag pair and reports whether key was one of the
// seven named tags. Unrecognized keys are the caller's to keep.
func (h *Header) Parse(key, value string) bool {
	switch key {
	case "Event":
		h.Event = parseTagValue(value)
	case "Site":
		h.Site = parseTagValue(value)
	case "Date":
		h.Date = parseDateValue(value)
	case "Round":
		h.Round = parseTagValue(value)
	case "White":
		h.White = parseTagValue(value)
	case "Black":
		h.Black = parseTagValue(value)
	case "Result":
		h.Result = ParseResult(value)
	default:
		return false
	}
	return true
}

func (h *Header) accept(v Visitor) {
	v.VisitHeader("Event", orUnknown(h.Event, "?"))
	v.VisitHeader("Site", orUnknown(h.Site, "?"))
	v.VisitHeader("Date", orUnknown(h.Date, unknownDate))
	v.VisitHeader("Round", orUnknown(h.Round, "?"))
	v.VisitHeader("White", orUnknown(h.White, "?"))
	v.VisitHeader("Black", orUnknown(h.Black, "?"))
	v.VisitHeader("Result", h.Result.String())
}

func parseTagValue(value string) string {
	switch value {
	case "?", "??":
		return ""
	}
	return value
}

func parseDateValue(value string) string {
	switch value {
	case "?", "??", unknownDate:
		return ""
	}
	return value
}

func orUnknown(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}
