package reassembly

import "fmt"

// Part is one inbound transport unit of a (possibly concatenated) message.
// Ref is the concatenation reference shared by all parts of one message;
// Index is 1-based. Single-part messages carry Total == 1.
type Part struct {
	Origin string
	Ref    uint16
	Index  int
	Total  int
	Text   string
}

func (p Part) Validate() error {
	if p.Origin == "" {
		return fmt.Errorf("part has no origin address")
	}
	if p.Total < 1 {
		return fmt.Errorf("part total %d is invalid", p.Total)
	}
	if p.Index < 1 || p.Index > p.Total {
		return fmt.Errorf("part index %d out of range [1,%d]", p.Index, p.Total)
	}
	return nil
}

// key scopes fragments per origin so two peers using the same reference
// number never get their parts mixed.
func (p Part) key() string {
	return fmt.Sprintf("%s:%d:%d", p.Origin, p.Ref, p.Total)
}
