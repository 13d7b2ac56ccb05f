package identifier

import "github.com/go-openapi/inflect"

// DefaultSQLName derives the SQL default name for a host routine or type
// whose own annotation left its name= element unset (spec §4.5/§4.6:
// "Name defaults to host method's simple name"). Host names are
// camelCase by convention; SQL names are snake_case by convention, so
// the default is inflect's own camelCase-to-underscore rule rather than
// a verbatim copy of the host spelling.
func DefaultSQLName(hostSimpleName string) string {
	return inflect.Underscore(hostSimpleName)
}
