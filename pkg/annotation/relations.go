package annotation

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
)

// ParseRelations decodes the dependency relations stored in a feature value.
//
// The value may be a typed []Relation or []*Relation, a JSON-decoded []interface{} of objects,
// or raw JSON (json.RawMessage, []byte or string). Entries without an integral "targetId" are
// skipped and counted in malformed.
func ParseRelations(v interface{}) (rels []Relation, malformed int) {
	switch val := v.(type) {
	case nil:
		return nil, 0
	case []Relation:
		return val, 0
	case []*Relation:
		for _, r := range val {
			if r == nil {
				malformed++
				continue
			}
			rels = append(rels, *r)
		}
		return rels, malformed
	case []interface{}:
		for _, item := range val {
			rels, malformed = appendRelation(rels, malformed, item)
		}
		return rels, malformed
	case []map[string]interface{}:
		for _, item := range val {
			rels, malformed = appendRelation(rels, malformed, item)
		}
		return rels, malformed
	case []FeatureMap:
		for _, item := range val {
			rels, malformed = appendRelation(rels, malformed, item)
		}
		return rels, malformed
	case json.RawMessage:
		return parseRawRelations(val)
	case []byte:
		return parseRawRelations(val)
	case string:
		return parseRawRelations([]byte(val))
	default:
		return nil, 1
	}
}

func appendRelation(rels []Relation, malformed int, item interface{}) ([]Relation, int) {
	rel, ok := relationFromValue(item)
	if !ok {
		return rels, malformed + 1
	}
	return append(rels, rel), malformed
}

func relationFromValue(item interface{}) (Relation, bool) {
	switch it := item.(type) {
	case Relation:
		return it, true
	case *Relation:
		if it == nil {
			return Relation{}, false
		}
		return *it, true
	case map[string]interface{}:
		target, ok := toInt(it["targetId"])
		if !ok {
			return Relation{}, false
		}
		typ, _ := it["type"].(string)
		return Relation{Type: typ, TargetID: target}, true
	case FeatureMap:
		return relationFromValue(map[string]interface{}(it))
	default:
		return Relation{}, false
	}
}

func parseRawRelations(data []byte) (rels []Relation, malformed int) {
	if !gjson.ValidBytes(data) {
		return nil, 1
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, 1
	}

	parsed.ForEach(func(_, item gjson.Result) bool {
		target := item.Get("targetId")
		if target.Type != gjson.Number {
			malformed++
			return true
		}
		id, ok := toInt(target.Num)
		if !ok {
			malformed++
			return true
		}
		rels = append(rels, Relation{
			Type:     item.Get("type").String(),
			TargetID: id,
		})
		return true
	})
	return rels, malformed
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive
		if math.IsNaN(n) || n != math.Trunc(n) || n >= float64(math.MaxInt) || n < float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return toInt(i)
	default:
		return 0, false
	}
}
