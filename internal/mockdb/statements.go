package mockdb

import (
	"regexp"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Kind is the role a generated statement plays in building the database.
type Kind int

const (
	// KindIgnored statements are never executed.
	KindIgnored Kind = iota
	// KindDDL covers CREATE TABLE and DROP TABLE.
	KindDDL
	// KindInsert covers INSERT INTO.
	KindInsert
)

func (k Kind) String() string {
	switch k {
	case KindDDL:
		return "ddl"
	case KindInsert:
		return "insert"
	default:
		return "ignored"
	}
}

// Statement is a classified statement. Table, Columns and ValueCount are
// filled for inserts; Table is filled for DDL.
type Statement struct {
	SQL        string
	Kind       Kind
	Table      string
	Columns    []string
	ValueCount int
}

// Classifier sorts generated statements. It is not safe for concurrent use.
type Classifier struct {
	p *parser.Parser
}

// NewClassifier returns a classifier backed by a fresh SQL parser.
func NewClassifier() *Classifier {
	return &Classifier{p: parser.New()}
}

// Classify parses stmt and reports its kind. Statements the parser rejects,
// typically because of dialect-specific syntax, fall back to a prefix check.
func (c *Classifier) Classify(stmt string) Statement {
	sql := strings.TrimSpace(stmt)
	sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	if sql == "" {
		return Statement{SQL: sql}
	}

	node, err := c.p.ParseOneStmt(sql, "", "")
	if err != nil {
		return classifyByPrefix(sql)
	}

	switch n := node.(type) {
	case *ast.CreateTableStmt:
		st := Statement{SQL: sql, Kind: KindDDL}
		if n.Table != nil {
			st.Table = n.Table.Name.O
		}
		return st
	case *ast.DropTableStmt:
		if n.IsView {
			return Statement{SQL: sql}
		}
		st := Statement{SQL: sql, Kind: KindDDL}
		if len(n.Tables) > 0 {
			st.Table = n.Tables[0].Name.O
		}
		return st
	case *ast.InsertStmt:
		if n.IsReplace {
			return Statement{SQL: sql}
		}
		st := Statement{SQL: sql, Kind: KindInsert}
		if n.Table != nil {
			tc := &tableCollector{}
			n.Table.Accept(tc)
			st.Table = tc.first
		}
		for _, col := range n.Columns {
			st.Columns = append(st.Columns, col.Name.O)
		}
		if len(n.Lists) > 0 {
			st.ValueCount = len(n.Lists[0])
		}
		return st
	default:
		return Statement{SQL: sql}
	}
}

// tableCollector records the first table name met during AST traversal.
type tableCollector struct {
	first string
}

// Enter records the first table name.
func (c *tableCollector) Enter(in ast.Node) (ast.Node, bool) {
	if t, ok := in.(*ast.TableName); ok && c.first == "" {
		c.first = t.Name.O
	}
	return in, false
}

// Leave completes the visitor step.
func (c *tableCollector) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

var (
	createTablePrefix = regexp.MustCompile(`(?is)^CREATE\s+(?:TEMP\s+|TEMPORARY\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([^\s(]+)`)
	dropTablePrefix   = regexp.MustCompile(`(?is)^DROP\s+TABLE\s+(?:IF\s+EXISTS\s+)?([^\s;]+)`)
	insertPrefix      = regexp.MustCompile(`(?is)^INSERT\s+(?:OR\s+\w+\s+)?INTO\s+([^\s(]+)\s*(\(([^)]*)\))?\s*VALUES\s*\((.*)$`)
)

// classifyByPrefix is the fallback for statements outside the parser's
// dialect.
func classifyByPrefix(sql string) Statement {
	if m := createTablePrefix.FindStringSubmatch(sql); m != nil {
		return Statement{SQL: sql, Kind: KindDDL, Table: unquoteIdent(m[1])}
	}
	if m := dropTablePrefix.FindStringSubmatch(sql); m != nil {
		return Statement{SQL: sql, Kind: KindDDL, Table: unquoteIdent(m[1])}
	}
	if m := insertPrefix.FindStringSubmatch(sql); m != nil {
		st := Statement{SQL: sql, Kind: KindInsert, Table: unquoteIdent(m[1])}
		if m[3] != "" {
			for _, col := range strings.Split(m[3], ",") {
				if col = unquoteIdent(strings.TrimSpace(col)); col != "" {
					st.Columns = append(st.Columns, col)
				}
			}
		}
		st.ValueCount = firstTupleWidth(m[4])
		return st
	}
	return Statement{SQL: sql}
}

func unquoteIdent(s string) string {
	return strings.Trim(s, "`\"[]")
}

// firstTupleWidth counts the top-level values of the tuple whose opening
// parenthesis has already been consumed.
func firstTupleWidth(s string) int {
	depth, count := 0, 1
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				if i+1 < len(s) && s[i+1] == quote {
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return count
			}
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}

// Partition classifies stmts and splits them into DDL and inserts,
// preserving order. The number of ignored statements is returned too.
func (c *Classifier) Partition(stmts []string) (ddl, inserts []Statement, ignored int) {
	for _, s := range stmts {
		st := c.Classify(s)
		switch st.Kind {
		case KindDDL:
			ddl = append(ddl, st)
		case KindInsert:
			inserts = append(inserts, st)
		default:
			ignored++
		}
	}
	return ddl, inserts, ignored
}
