package cli

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/joinguard/joinguard"
	"github.com/joinguard/joinguard/sqlb"
)

// ChainFile is the on-disk declaration of a join chain. Example:
//
//	from:
//	  table: orders
//	joins:
//	  - table: order_items
//	    alias: i
//	    match:
//	      - left: orders.id
//	        right: i.order_id
//	    validate: [ONE_TO_MANY]
//	  - table: products
//	    on: "i.product_id = products.id"
//	    validate: [MANY_TO_ONE, LEFT_TOTAL]
//	select: [orders.id, i.qty, products.name]
//	limit: 100
type ChainFile struct {
	From   TableDef  `json:"from"`
	Joins  []JoinDef `json:"joins"`
	Select []string  `json:"select,omitempty"`
	Where  string    `json:"where,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// TableDef names a base table, optionally aliased.
type TableDef struct {
	Table string `json:"table"`
	Alias string `json:"alias,omitempty"`
}

// JoinDef declares one join step.
type JoinDef struct {
	Table    string     `json:"table"`
	Alias    string     `json:"alias,omitempty"`
	Type     string     `json:"type,omitempty"` // inner (default), left, right, full, cross
	On       string     `json:"on,omitempty"`   // raw SQL criterion
	Match    []MatchDef `json:"match,omitempty"`
	Validate []string   `json:"validate,omitempty"`
}

// MatchDef is one equality pair of a criterion; multiple pairs are ANDed.
type MatchDef struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// LoadChain reads a chain file and builds the query it declares.
func LoadChain(path string) (*joinguard.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf ChainFile
	if err := yaml.UnmarshalStrict(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cf.Build()
}

// Build converts the declaration into an executable query.
func (cf *ChainFile) Build() (*joinguard.Query, error) {
	if cf.From.Table == "" {
		return nil, fmt.Errorf("chain file: missing from.table")
	}
	q := joinguard.From(tableOf(cf.From.Table, cf.From.Alias))

	for i, j := range cf.Joins {
		if j.Table == "" {
			return nil, fmt.Errorf("chain file: join %d: missing table", i+1)
		}
		typ, err := parseJoinType(j.Type)
		if err != nil {
			return nil, fmt.Errorf("chain file: join %d: %w", i+1, err)
		}
		on, err := parseCriterion(j)
		if err != nil {
			return nil, fmt.Errorf("chain file: join %d: %w", i+1, err)
		}
		flags, err := ParseFlags(j.Validate)
		if err != nil {
			return nil, fmt.Errorf("chain file: join %d: %w", i+1, err)
		}
		q = q.Join(tableOf(j.Table, j.Alias), typ, on, flags)
	}

	if len(cf.Select) > 0 {
		cols := make([]sqlb.Expr, len(cf.Select))
		for i, c := range cf.Select {
			cols[i] = parseColumn(c)
		}
		q = q.Select(cols...)
	}
	if cf.Where != "" {
		q = q.Where(sqlb.Raw(cf.Where))
	}
	if cf.Limit > 0 {
		q = q.Limit(cf.Limit)
	}
	return q, nil
}

func tableOf(name, alias string) sqlb.Table {
	t := sqlb.T(name)
	if alias != "" {
		t = t.As(alias)
	}
	return t
}

func parseJoinType(s string) (sqlb.JoinType, error) {
	switch strings.ToLower(s) {
	case "", "inner":
		return sqlb.InnerJoin, nil
	case "left":
		return sqlb.LeftJoin, nil
	case "right":
		return sqlb.RightJoin, nil
	case "full":
		return sqlb.FullJoin, nil
	case "cross":
		return sqlb.CrossJoin, nil
	default:
		return 0, fmt.Errorf("unknown join type %q", s)
	}
}

func parseCriterion(j JoinDef) (sqlb.Expr, error) {
	if j.On != "" && len(j.Match) > 0 {
		return nil, fmt.Errorf("on and match are mutually exclusive")
	}
	if j.On != "" {
		return sqlb.Raw(j.On), nil
	}
	if len(j.Match) == 0 {
		if strings.EqualFold(j.Type, "cross") {
			return nil, nil
		}
		return nil, fmt.Errorf("missing criterion (need on or match)")
	}
	parts := make([]sqlb.Expr, len(j.Match))
	for i, m := range j.Match {
		if m.Left == "" || m.Right == "" {
			return nil, fmt.Errorf("match %d: need both left and right", i+1)
		}
		parts[i] = sqlb.Eq(parseColumn(m.Left), parseColumn(m.Right))
	}
	return sqlb.And(parts...), nil
}

// parseColumn turns "table.column" into a column reference; a bare name stays
// unqualified.
func parseColumn(s string) sqlb.Expr {
	if i := strings.LastIndex(s, "."); i > 0 {
		return sqlb.C(s[:i], s[i+1:])
	}
	return sqlb.Col{Column: s}
}

// flagsByName maps chain-file names to flag sets, presets included.
var flagsByName = map[string]joinguard.Flag{
	"ONE_TO_MANY": joinguard.OneToMany,
	"MANY_TO_ONE": joinguard.ManyToOne,
	"LEFT_TOTAL":  joinguard.LeftTotal,
	"RIGHT_TOTAL": joinguard.RightTotal,
	"ONE_TO_ONE":  joinguard.OneToOne,
	"TOTAL":       joinguard.Total,
	"MANDATORY":   joinguard.Mandatory,
}

// ParseFlags folds flag names into one set. Unknown names are errors.
func ParseFlags(names []string) (joinguard.Flag, error) {
	var flags joinguard.Flag
	for _, name := range names {
		f, ok := flagsByName[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown validation flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}
