package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Patch is a partial overlay of row fields. A nil pointer means "not set".
type Patch struct {
	CheckNumber             *string
	DateOfDeposit           *string
	CheckAmount             *decimal.Decimal
	Payer                   *string
	Location                *string
	Practice                *string
	Type                    *string
	ExchangeDescription     *string
	BankStatementTrnDetails *string
	Comments                *string
	AssigneeID              *int64
	ReporterID              *int64
}

// Set parses raw for field f and stores it in the patch.
func (p *Patch) Set(f Field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f {
	case FieldCheckAmount:
		d := decimal.Zero
		if raw != "" {
			var err error
			d, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", ""))
			if err != nil {
				return fmt.Errorf("parsing %s %q: %w", f, raw, err)
			}
		}
		p.CheckAmount = &d
		return nil
	case FieldAssigneeID, FieldReporterID:
		var n int64
		if raw != "" {
			var err error
			n, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing %s %q: %w", f, raw, err)
			}
		}
		if f == FieldAssigneeID {
			p.AssigneeID = &n
		} else {
			p.ReporterID = &n
		}
		return nil
	}

	s := p.text(f)
	if s == nil {
		return fmt.Errorf("unknown field %q", f)
	}
	*s = &raw
	return nil
}

// text returns the address of the pointer slot for a text field, or nil.
func (p *Patch) text(f Field) **string {
	switch f {
	case FieldCheckNumber:
		return &p.CheckNumber
	case FieldDateOfDeposit:
		return &p.DateOfDeposit
	case FieldPayer:
		return &p.Payer
	case FieldLocation:
		return &p.Location
	case FieldPractice:
		return &p.Practice
	case FieldType:
		return &p.Type
	case FieldExchangeDescription:
		return &p.ExchangeDescription
	case FieldBankStatementTrnDetails:
		return &p.BankStatementTrnDetails
	case FieldComments:
		return &p.Comments
	}
	return nil
}

// Merge returns p with every field set in other overriding p's value.
func (p Patch) Merge(other Patch) Patch {
	out := p.Clone()
	for _, f := range Fields {
		switch f {
		case FieldCheckAmount:
			if other.CheckAmount != nil {
				v := *other.CheckAmount
				out.CheckAmount = &v
			}
		case FieldAssigneeID:
			if other.AssigneeID != nil {
				v := *other.AssigneeID
				out.AssigneeID = &v
			}
		case FieldReporterID:
			if other.ReporterID != nil {
				v := *other.ReporterID
				out.ReporterID = &v
			}
		default:
			if src := *other.text(f); src != nil {
				v := *src
				*out.text(f) = &v
			}
		}
	}
	return out
}

// Clone returns a deep copy so callers never share pointers.
func (p Patch) Clone() Patch {
	out := Patch{}
	for _, f := range Fields {
		switch f {
		case FieldCheckAmount:
			if p.CheckAmount != nil {
				v := *p.CheckAmount
				out.CheckAmount = &v
			}
		case FieldAssigneeID:
			if p.AssigneeID != nil {
				v := *p.AssigneeID
				out.AssigneeID = &v
			}
		case FieldReporterID:
			if p.ReporterID != nil {
				v := *p.ReporterID
				out.ReporterID = &v
			}
		default:
			if src := *p.text(f); src != nil {
				v := *src
				*out.text(f) = &v
			}
		}
	}
	return out
}

// Fields returns the set fields in template order.
func (p Patch) Fields() []Field {
	var set []Field
	for _, f := range Fields {
		switch f {
		case FieldCheckAmount:
			if p.CheckAmount != nil {
				set = append(set, f)
			}
		case FieldAssigneeID:
			if p.AssigneeID != nil {
				set = append(set, f)
			}
		case FieldReporterID:
			if p.ReporterID != nil {
				set = append(set, f)
			}
		default:
			if *p.text(f) != nil {
				set = append(set, f)
			}
		}
	}
	return set
}

// Empty reports whether no field is set.
func (p Patch) Empty() bool {
	return len(p.Fields()) == 0
}

// RowUpdate is one fully resolved item of a bulk-update request.
type RowUpdate struct {
	StagingCheckID          string          `json:"stagingCheckId"`
	CheckNumber             string          `json:"checkNumber"`
	DateOfDeposit           string          `json:"dateOfDeposit"`
	CheckAmount             decimal.Decimal `json:"checkAmount"`
	Payer                   string          `json:"payer"`
	Location                string          `json:"location"`
	Practice                string          `json:"practice"`
	Type                    string          `json:"type"`
	ExchangeDescription     string          `json:"exchangeDescription"`
	BankStatementTrnDetails string          `json:"bankStatementTrnDetails"`
	Comments                string          `json:"comments"`
	AssigneeID              int64           `json:"assigneeId"`
	ReporterID              int64           `json:"reporterId"`
}

// MarshalJSON writes checkAmount as a JSON number rather than a quoted string.
func (u RowUpdate) MarshalJSON() ([]byte, error) {
	type plain RowUpdate
	return json.Marshal(struct {
		plain
		CheckAmount json.Number `json:"checkAmount"`
	}{
		plain:       plain(u),
		CheckAmount: json.Number(u.CheckAmount.String()),
	})
}
