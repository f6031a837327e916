package chromem

import (
	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// whereClause extracts the Must equalities chromem can evaluate by exact
// metadata text. Only strings and booleans qualify: numbers compare
// across Int and Float, which text equality cannot express. Everything
// else is checked afterwards with FilterSet.Matches.
func whereClause(fs *vectorstore.FilterSet) map[string]string {
	if fs == nil || fs.Must == nil {
		return nil
	}
	where := map[string]string{}
	for _, c := range fs.Must.Conditions {
		m, ok := c.(*vectorstore.MatchCondition)
		if !ok {
			continue
		}
		if k := m.Value.Kind(); k != payload.KindString && k != payload.KindBool {
			continue
		}
		if _, dup := where[m.Field]; dup {
			continue
		}
		where[m.Field] = string(payload.EncodeValue(m.Value))
	}
	if len(where) == 0 {
		return nil
	}
	return where
}
