package dsl

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	traceLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(traceLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Script 是一个输入回放脚本：每行一条语句，# 之后为注释。
type Script struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Statements []*Statement   `parser:"Newline* ( @@ Newline* )*"`
}

// Statement 是脚本中的一条语句。
type Statement struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Surface  *SurfaceStmt   `parser:"  @@"`
	Letter   *LetterStmt    `parser:"| @@"`
	Pointer  *PointerStmt   `parser:"| @@"`
	Release  *ReleaseStmt   `parser:"| @@"`
	Clear    *ClearStmt     `parser:"| @@"`
	Scroll   *ScrollStmt    `parser:"| @@"`
	Resize   *ResizeStmt    `parser:"| @@"`
	Snapshot *SnapshotStmt  `parser:"| @@"`
}

// Kind 返回语句类型名称。
func (s *Statement) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Surface != nil:
		return "surface"
	case s.Letter != nil:
		return "letter"
	case s.Pointer != nil:
		return s.Pointer.Device
	case s.Release != nil:
		return s.Release.Phase
	case s.Clear != nil:
		return "clear"
	case s.Scroll != nil:
		return "scroll"
	case s.Resize != nil:
		return "resize"
	case s.Snapshot != nil:
		return "snapshot"
	default:
		return "unknown"
	}
}

// SurfaceStmt 声明绘制面的逻辑尺寸、像素比与视口偏移：surface 400 200 ratio 2 at 30 40。
type SurfaceStmt struct {
	Width  float64  `parser:"'surface' @Number"`
	Height float64  `parser:"@Number"`
	Ratio  *float64 `parser:"( 'ratio' @Number )?"`
	At     *Point   `parser:"( 'at' @@ )?"`
}

// LetterStmt 挂载（或切换）字母：letter "B"。
type LetterStmt struct {
	Value StringLiteral `parser:"'letter' @String"`
}

// PointerStmt 是一次鼠标或触摸事件，坐标为视口（client）坐标。
// 触摸事件可以携带多个触点，只有第一个生效；touch up 通常不带触点。
type PointerStmt struct {
	Device string   `parser:"@( 'mouse' | 'touch' )"`
	Phase  string   `parser:"@( 'down' | 'move' | 'up' | 'leave' )"`
	Points []*Point `parser:"@@*"`
}

// ReleaseStmt 是不区分设备的 up / leave。
type ReleaseStmt struct {
	Phase string `parser:"@( 'up' | 'leave' )"`
}

// ClearStmt 清除所有笔迹。
type ClearStmt struct {
	Clear bool `parser:"@'clear'"`
}

// ScrollStmt 模拟页面滚动：绘制面在视口中的位置移动 (-dx, -dy)。
type ScrollStmt struct {
	DX float64 `parser:"'scroll' @Number"`
	DY float64 `parser:"@Number"`
}

// ResizeStmt 修改绘制面的逻辑尺寸，可选同时修改像素比。
type ResizeStmt struct {
	Width  float64  `parser:"'resize' @Number"`
	Height float64  `parser:"@Number"`
	Ratio  *float64 `parser:"( 'ratio' @Number )?"`
}

// SnapshotStmt 输出当前绘制面：snapshot "b.png"。
type SnapshotStmt struct {
	Path StringLiteral `parser:"'snapshot' @String"`
}

// Point 是一对坐标。
type Point struct {
	X float64 `parser:"@Number"`
	Y float64 `parser:"@Number"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a trace script from an io.Reader.
func Parse(r io.Reader) (*Script, error) {
	return parse("", r)
}

// ParseString parses a trace script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}

// ParseFile parses the script at path; error positions carry the file name.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(path, f)
}

func parse(name string, r io.Reader) (*Script, error) {
	return scriptParser.Parse(name, r)
}
