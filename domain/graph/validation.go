package graph

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

// MaxTextLength is the column width of every text field in the graph schema.
const MaxTextLength = 255

type fieldKind int

const (
	kindName fieldKind = iota
	kindType
	kindLabel
	kindUsername
)

// patterns is built once at package init and only read afterwards.
var patterns = map[fieldKind]*regexp.Regexp{
	kindName:     alnum(3, MaxTextLength),
	kindType:     alnum(3, MaxTextLength),
	kindLabel:    alnum(3, MaxTextLength),
	kindUsername: alnum(3, MaxTextLength),
}

func alnum(minLen, maxLen int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9]{%d,%d}$`, minLen, maxLen))
}

// Violations collects every problem found in a descriptor. Field-scoped
// problems are keyed by field path; cross-field problems go to Matched.
type Violations struct {
	Fields  map[string][]string
	Matched []string
}

func (v *Violations) addField(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

func (v *Violations) addMatched(msg string) {
	v.Matched = append(v.Matched, msg)
}

// Empty reports whether no violation was recorded.
func (v *Violations) Empty() bool {
	return len(v.Fields) == 0 && len(v.Matched) == 0
}

// merge folds other into v, prefixing field paths and matched messages.
func (v *Violations) merge(prefix string, other *Violations) {
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			v.addField(prefix+"."+field, msg)
		}
	}
	for _, msg := range other.Matched {
		v.addMatched(prefix + ": " + msg)
	}
}

// Err converts the collected violations into a validation_error, or nil.
func (v *Violations) Err() error {
	if v.Empty() {
		return nil
	}
	details := map[string]any{}
	if len(v.Fields) > 0 {
		details["fields"] = v.Fields
	}
	if len(v.Matched) > 0 {
		details["matched"] = v.Matched
	}
	return apperror.ErrValidation.
		WithMessage(v.summary()).
		WithDetails(details)
}

func (v *Violations) summary() string {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	switch {
	case len(fields) == 0:
		return v.Matched[0]
	case len(fields) == 1 && len(v.Matched) == 0:
		return fmt.Sprintf("%s %s", fields[0], v.Fields[fields[0]][0])
	default:
		return fmt.Sprintf("%d invalid fields", len(fields)+len(v.Matched))
	}
}

func checkText(v *Violations, field string, kind fieldKind, value string) {
	if !patterns[kind].MatchString(value) {
		v.addField(field, fmt.Sprintf("must be 3-%d alphanumeric characters", MaxTextLength))
	}
}

func checkID(v *Violations, field string, id int64) {
	if id < 1 {
		v.addField(field, "must be greater than or equal to 1")
	}
}

// checkDistinctEndpoints reports a self-loop. The violation belongs to the
// pair of fields, so it is recorded as matched rather than on either field.
func checkDistinctEndpoints(v *Violations, from, to int64) {
	if from == to {
		v.addMatched("from_vertex_id and to_vertex_id must differ")
	}
}

func validateVertex(req *CreateVertexRequest) *Violations {
	v := &Violations{}
	if req == nil {
		v.addMatched("request body is required")
		return v
	}
	checkText(v, "name", kindName, req.Name)
	checkText(v, "type", kindType, req.Type)
	checkText(v, "created_by", kindUsername, req.CreatedBy)
	return v
}

func validateEdge(req *CreateEdgeRequest) *Violations {
	v := &Violations{}
	if req == nil {
		v.addMatched("request body is required")
		return v
	}
	checkID(v, "from_vertex_id", req.FromVertexID)
	checkID(v, "to_vertex_id", req.ToVertexID)
	checkText(v, "label", kindLabel, req.Label)
	checkText(v, "created_by", kindUsername, req.CreatedBy)
	checkDistinctEndpoints(v, req.FromVertexID, req.ToVertexID)
	return v
}

func validateVertices(reqs []CreateVertexRequest) *Violations {
	v := &Violations{}
	for i := range reqs {
		v.merge(itemPath(i), validateVertex(&reqs[i]))
	}
	return v
}

func validateEdges(reqs []CreateEdgeRequest) *Violations {
	v := &Violations{}
	for i := range reqs {
		v.merge(itemPath(i), validateEdge(&reqs[i]))
	}
	return v
}

func itemPath(i int) string {
	return fmt.Sprintf("items[%d]", i)
}

// validateID rejects non-positive identifiers before any query is issued.
func validateID(field string, id int64) error {
	v := &Violations{}
	checkID(v, field, id)
	return v.Err()
}

func validateBatchSize(n, limit int) error {
	if n <= limit {
		return nil
	}
	v := &Violations{}
	v.addField("items", fmt.Sprintf("must contain at most %d entries, got %d", limit, n))
	return v.Err()
}
