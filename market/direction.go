package market

import "strings"

// Direction classifies a fill by the side and intent of the trader.
type Direction int

const (
	Other Direction = iota
	OpenLong
	CloseLong
	OpenShort
	CloseShort
)

var directionNames = map[Direction]string{
	Other:      "Other",
	OpenLong:   "Open Long",
	CloseLong:  "Close Long",
	OpenShort:  "Open Short",
	CloseShort: "Close Short",
}

// Directions lists every direction in reporting order.
var Directions = []Direction{OpenLong, CloseLong, OpenShort, CloseShort, Other}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "Other"
}

// Key is a lowercase identifier for file names and storage columns.
func (d Direction) Key() string {
	return strings.ReplaceAll(strings.ToLower(d.String()), " ", "_")
}

// ClassifyDirection maps the free-text direction column of an exchange
// export onto a Direction. Matching is by substring, in the same precedence
// the export uses: longs before shorts, opens before closes.
func ClassifyDirection(dir string) Direction {
	for _, d := range []Direction{OpenLong, CloseLong, OpenShort, CloseShort} {
		if strings.Contains(dir, directionNames[d]) {
			return d
		}
	}
	return Other
}
