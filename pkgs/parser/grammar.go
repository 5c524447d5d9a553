package parser

import (
	"github.com/aledsdavies/treeparse/pkgs/lexer"
	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// Symbol is a grammar nonterminal
type Symbol int

const (
	SymProgram Symbol = iota
	SymStmtList
	SymStmt
	SymIfStmt
	SymElsePart
	SymWhileStmt
	SymDoUntilStmt
	SymCondition
	SymExpr
	SymExpo
	SymTerm
	SymTermTail
	SymFactor
	SymFactorTail
)

// Node labels, as they appear in rendered trees
var symbolNames = [...]string{
	SymProgram:     "Program",
	SymStmtList:    "StmtList",
	SymStmt:        "stmt",
	SymIfStmt:      "if_stmt",
	SymElsePart:    "else_part",
	SymWhileStmt:   "while_stmt",
	SymDoUntilStmt: "do_until_stmt",
	SymCondition:   "condition",
	SymExpr:        "Expr",
	SymExpo:        "Expo",
	SymTerm:        "Term",
	SymTermTail:    "TermTail",
	SymFactor:      "Factor",
	SymFactorTail:  "FactorTail",
}

func (s Symbol) String() string {
	if s >= 0 && int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return "Symbol(?)"
}

// startsStmt reports whether t is in FIRST(stmt)
func startsStmt(t lexer.TokenType) bool {
	switch t {
	case lexer.ID, lexer.READ, lexer.WRITE, lexer.IF, lexer.WHILE, lexer.DO:
		return true
	}
	return false
}

// program: Program → StmtList EOF
func (p *parser) program(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymProgram)
	if err := p.stmtList(node); err != nil {
		return err
	}
	return p.match(node, lexer.EOF)
}

// stmtList: StmtList → stmt StmtList | ε
//
// Each iteration opens the nested StmtList under the previous one, so the
// tree keeps the right-recursive shape without growing the call stack.
func (p *parser) stmtList(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymStmtList)
	for startsStmt(p.src.Current()) {
		if err := p.stmt(node); err != nil {
			return err
		}
		node = p.open(node, SymStmtList)
	}
	p.empty(node)
	return nil
}

func (p *parser) stmt(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymStmt)

	switch p.src.Current() {
	case lexer.ID:
		// id := Expr
		if err := p.match(node, lexer.ID); err != nil {
			return err
		}
		if err := p.match(node, lexer.ASSIGN_OP); err != nil {
			return err
		}
		return p.expr(node)

	case lexer.READ:
		if err := p.match(node, lexer.READ); err != nil {
			return err
		}
		return p.match(node, lexer.ID)

	case lexer.WRITE:
		if err := p.match(node, lexer.WRITE); err != nil {
			return err
		}
		return p.expr(node)

	case lexer.IF:
		return p.ifStmt(node)

	case lexer.WHILE:
		return p.whileStmt(node)

	case lexer.DO:
		return p.doUntilStmt(node)

	default:
		p.empty(node)
		return nil
	}
}

// ifStmt: IF condition THEN StmtList [else_part] FI
func (p *parser) ifStmt(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymIfStmt)
	if err := p.match(node, lexer.IF); err != nil {
		return err
	}
	if err := p.condition(node); err != nil {
		return err
	}
	if err := p.match(node, lexer.THEN); err != nil {
		return err
	}
	if err := p.stmtList(node); err != nil {
		return err
	}
	if p.src.Current() == lexer.ELSE {
		if err := p.elsePart(node); err != nil {
			return err
		}
	}
	return p.match(node, lexer.FI)
}

// elsePart: else_part → ELSE StmtList
func (p *parser) elsePart(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymElsePart)
	if err := p.match(node, lexer.ELSE); err != nil {
		return err
	}
	return p.stmtList(node)
}

// whileStmt: WHILE condition DO StmtList OD
func (p *parser) whileStmt(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymWhileStmt)
	if err := p.match(node, lexer.WHILE); err != nil {
		return err
	}
	if err := p.condition(node); err != nil {
		return err
	}
	if err := p.match(node, lexer.DO); err != nil {
		return err
	}
	if err := p.stmtList(node); err != nil {
		return err
	}
	return p.match(node, lexer.OD)
}

// doUntilStmt: DO StmtList UNTIL condition
func (p *parser) doUntilStmt(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymDoUntilStmt)
	if err := p.match(node, lexer.DO); err != nil {
		return err
	}
	if err := p.stmtList(node); err != nil {
		return err
	}
	if err := p.match(node, lexer.UNTIL); err != nil {
		return err
	}
	return p.condition(node)
}

// condition: Expr REL_OP Expr
func (p *parser) condition(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymCondition)
	if err := p.expr(node); err != nil {
		return err
	}
	if err := p.match(node, lexer.REL_OP); err != nil {
		return err
	}
	return p.expr(node)
}

// expr: Expr → Expo
func (p *parser) expr(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymExpr)
	return p.expo(node)
}

// expo: Expo → Term TermTail
func (p *parser) expo(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymExpo)
	if err := p.term(node); err != nil {
		return err
	}
	return p.termTail(node)
}

// termTail: TermTail → ADD_OP Term TermTail | ε
func (p *parser) termTail(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymTermTail)
	for p.src.Current() == lexer.ADD_OP {
		if err := p.match(node, lexer.ADD_OP); err != nil {
			return err
		}
		if err := p.term(node); err != nil {
			return err
		}
		node = p.open(node, SymTermTail)
	}
	p.empty(node)
	return nil
}

// term: Term → Factor FactorTail
func (p *parser) term(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymTerm)
	if err := p.factor(node); err != nil {
		return err
	}
	return p.factorTail(node)
}

// factorTail: FactorTail → MULT_OP Factor FactorTail | ε
func (p *parser) factorTail(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymFactorTail)
	for p.src.Current() == lexer.MULT_OP {
		if err := p.match(node, lexer.MULT_OP); err != nil {
			return err
		}
		if err := p.factor(node); err != nil {
			return err
		}
		node = p.open(node, SymFactorTail)
	}
	p.empty(node)
	return nil
}

// factor: Factor → ( Expr ) | ID | NUMBER
func (p *parser) factor(parent tree.NodeID) *SyntaxError {
	node := p.open(parent, SymFactor)

	switch p.src.Current() {
	case lexer.ID:
		return p.match(node, lexer.ID)
	case lexer.NUMBER:
		return p.match(node, lexer.NUMBER)
	default:
		// A parenthesised expression is the only remaining alternative,
		// so anything else fails here expecting '('
		if err := p.match(node, lexer.LEFT_PAREN); err != nil {
			return err
		}
		if err := p.expr(node); err != nil {
			return err
		}
		return p.match(node, lexer.RIGHT_PAREN)
	}
}
