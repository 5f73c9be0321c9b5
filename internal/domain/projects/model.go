package projects

import "regexp"

// RolePI marks the principal investigator in projects_persons.
const RolePI = "PI"

var spacePrefix = regexp.MustCompile(`/.*?/`)

// Code strips the openBIS space from an identifier: "/SPACE/QABCD" -> "QABCD".
func Code(identifier string) string {
	return spacePrefix.ReplaceAllString(identifier, "")
}

type Project struct {
	ID              int64
	Identifier      string // openBIS identifier, "/SPACE/CODE"
	ShortTitle      string
	LongDescription string
}
