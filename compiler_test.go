package joinguard

import (
	"strings"
	"testing"

	"github.com/joinguard/joinguard/sqlb"
)

func chainXY(flags Flag) *Query {
	return From(sqlb.T("x")).
		Join(sqlb.T("y"), sqlb.InnerJoin, sqlb.Eq(sqlb.C("x", "id"), sqlb.C("y", "xkey")), flags)
}

func TestCompile_OneToMany(t *testing.T) {
	stmts, err := compileChain(chainXY(OneToMany))
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	st := stmts[0]

	wantCount := "SELECT COUNT(*) FROM y WHERE (SELECT COUNT(*) FROM x WHERE x.id = y.xkey) > 1"
	if st.countSQL != wantCount {
		t.Errorf("countSQL = %q, want %q", st.countSQL, wantCount)
	}
	wantSample := "SELECT * FROM y WHERE (SELECT COUNT(*) FROM x WHERE x.id = y.xkey) > 1 LIMIT 10"
	if st.sampleSQL != wantSample {
		t.Errorf("sampleSQL = %q, want %q", st.sampleSQL, wantSample)
	}
	if st.loc != "join 1: x ONE_TO_MANY y" {
		t.Errorf("loc = %q", st.loc)
	}
}

func TestCompile_ManyToOne(t *testing.T) {
	stmts, err := compileChain(chainXY(ManyToOne))
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	wantCount := "SELECT COUNT(*) FROM x WHERE (SELECT COUNT(*) FROM y WHERE x.id = y.xkey) > 1"
	if stmts[0].countSQL != wantCount {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, wantCount)
	}
}

func TestCompile_LeftTotal(t *testing.T) {
	stmts, err := compileChain(chainXY(LeftTotal))
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	wantCount := "SELECT COUNT(*) FROM x WHERE NOT EXISTS (SELECT 1 FROM y WHERE x.id = y.xkey)"
	if stmts[0].countSQL != wantCount {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, wantCount)
	}
}

func TestCompile_RightTotal(t *testing.T) {
	stmts, err := compileChain(chainXY(RightTotal))
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	wantCount := "SELECT COUNT(*) FROM y WHERE NOT EXISTS (SELECT 1 FROM x WHERE x.id = y.xkey)"
	if stmts[0].countSQL != wantCount {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, wantCount)
	}
}

// Atomic flags of one step compile in fixed order, and a later step's
// statements never precede an earlier step's.
func TestCompile_OrderingAcrossSteps(t *testing.T) {
	q := From(sqlb.T("x")).
		Join(sqlb.T("y"), sqlb.InnerJoin, sqlb.Eq(sqlb.C("x", "id"), sqlb.C("y", "xkey")), Mandatory).
		Join(sqlb.T("z"), sqlb.InnerJoin, sqlb.Eq(sqlb.C("y", "id"), sqlb.C("z", "ykey")), OneToOne)

	stmts, err := compileChain(q)
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}

	wantFlags := []Flag{OneToMany, ManyToOne, LeftTotal, RightTotal, OneToMany, ManyToOne}
	wantSteps := []int{1, 1, 1, 1, 2, 2}
	if len(stmts) != len(wantFlags) {
		t.Fatalf("expected %d statements, got %d", len(wantFlags), len(stmts))
	}
	for i, st := range stmts {
		if st.flag != wantFlags[i] || st.stepPos != wantSteps[i] {
			t.Errorf("stmt %d: (step %d, %s), want (step %d, %s)",
				i, st.stepPos, st.flag, wantSteps[i], wantFlags[i])
		}
	}
}

// At step 2 the left relation is the accumulated join of prior steps, not the
// base table alone.
func TestCompile_ChainedLeftRelation(t *testing.T) {
	q := From(sqlb.T("orders")).
		Join(sqlb.T("order_items"), sqlb.InnerJoin,
			sqlb.Eq(sqlb.C("orders", "id"), sqlb.C("order_items", "order_id")), 0).
		Join(sqlb.T("products"), sqlb.InnerJoin,
			sqlb.Eq(sqlb.C("order_items", "product_id"), sqlb.C("products", "id")), ManyToOne)

	stmts, err := compileChain(q)
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("unvalidated step must compile nothing; got %d statements", len(stmts))
	}
	want := "SELECT COUNT(*) FROM orders INNER JOIN order_items ON orders.id = order_items.order_id" +
		" WHERE (SELECT COUNT(*) FROM products WHERE order_items.product_id = products.id) > 1"
	if stmts[0].countSQL != want {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, want)
	}
	if stmts[0].loc != "join 2: orders+order_items MANY_TO_ONE products" {
		t.Errorf("loc = %q", stmts[0].loc)
	}
}

// The criterion travels into the validation statements verbatim, so composite
// keys stay composite.
func TestCompile_CompositeCriterion(t *testing.T) {
	crit := sqlb.And(
		sqlb.Eq(sqlb.C("x", "a"), sqlb.C("y", "a")),
		sqlb.Eq(sqlb.C("x", "b"), sqlb.C("y", "b")),
	)
	q := From(sqlb.T("x")).Join(sqlb.T("y"), sqlb.InnerJoin, crit, ManyToOne)

	stmts, err := compileChain(q)
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	want := "SELECT COUNT(*) FROM x WHERE (SELECT COUNT(*) FROM y WHERE (x.a = y.a) AND (x.b = y.b)) > 1"
	if stmts[0].countSQL != want {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, want)
	}
}

// A subquery right-hand side is rendered inline inside the checks.
func TestCompile_SubqueryRight(t *testing.T) {
	fulfilled := sqlb.Subquery{
		Stmt: sqlb.SelectStmt{
			Columns: []sqlb.Expr{sqlb.C("order_items", "product_id")},
			From:    sqlb.T("order_items"),
			Where:   sqlb.Eq(sqlb.C("order_items", "fulfilled"), sqlb.Int(1)),
		},
		Alias: "f",
	}
	q := From(sqlb.T("products")).
		Join(fulfilled, sqlb.InnerJoin,
			sqlb.Eq(sqlb.C("products", "id"), sqlb.C("f", "product_id")), LeftTotal)

	stmts, err := compileChain(q)
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	want := "SELECT COUNT(*) FROM products WHERE NOT EXISTS (SELECT 1 FROM" +
		" (SELECT order_items.product_id FROM order_items WHERE order_items.fulfilled = 1) AS f" +
		" WHERE products.id = f.product_id)"
	if stmts[0].countSQL != want {
		t.Errorf("countSQL = %q, want %q", stmts[0].countSQL, want)
	}
}

func TestCompile_InvalidFlagSurfaces(t *testing.T) {
	q := From(sqlb.T("x")).Join(sqlb.T("y"), sqlb.InnerJoin, sqlb.Raw("1 = 1"), Flag(0xF0))
	if _, err := compileChain(q); !IsInvalidFlagErr(err) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestCompile_MessageMentionsFlagAndRelations(t *testing.T) {
	stmts, err := compileChain(chainXY(LeftTotal))
	if err != nil {
		t.Fatalf("compileChain: %v", err)
	}
	msg := stmts[0].message(3)
	for _, want := range []string{"LEFT_TOTAL", "3", "x", "y"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q should contain %q", msg, want)
		}
	}
}
