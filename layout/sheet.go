package layout

import (
	"fmt"
)

// 练习单以毫米为单位排版：标题行、若干描红练习带、示例单词行。

const (
	defaultPageWidth   = 210.0
	defaultPageHeight  = 297.0
	defaultPageMargin  = 15.0
	defaultBandHeight  = 45.0
	defaultRowHeight   = 18.0
	bandGap            = 6.0
	titleHeight        = 24.0
	imageSize          = 14.0
	imageGap           = 4.0
	rowGap             = 3.0
	rowBorderWidth     = 0.3
	titleFontSize      = 18.0
	wordFontSize       = 7.0
	translationSize    = 4.5
	wordBaselineOffset = 8.0
	transBaselineGap   = 6.5
)

// Typesetter 负责测量文本宽度（单位与字号一致，此处为 mm）。
type Typesetter interface {
	TextWidth(content string, font FontResource, fontSize float64) (float64, error)
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// SheetWord 是练习单上的一个示例单词。
type SheetWord struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Image       []byte `json:"-"`
}

// SheetOptions 配置练习单的页面、字体与排版后端。
type SheetOptions struct {
	Typesetter      Typesetter
	Guides          BuildOptions
	PageWidth       float64
	PageHeight      float64
	Margin          float64
	Bands           int
	BandHeight      float64
	RowHeight       float64
	WordFont        FontResource
	TranslationFont FontResource // Src 为空时不输出译文
	Meta            DocumentMeta
}

// Sheet 保存排版后的页面与资源。
type Sheet struct {
	Letter LetterGlyph             `json:"letter"`
	Pages  []Page                  `json:"pages"`
	Fonts  map[string]FontResource `json:"fonts"`
	Meta   DocumentMeta            `json:"meta"`
}

// Page 记录页面尺寸与可直接渲染的元素（单位：mm）。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Bands  []Band     `json:"bands,omitempty"`
	Texts  []TextBox  `json:"texts,omitempty"`
	Images []ImageBox `json:"images,omitempty"`
	Rects  []Rect     `json:"rects,omitempty"`
}

// Band 是放置在页面 (X, Y) 处的一条描红练习带。
type Band struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Guides *GuideLayout `json:"guides"`
}

// TextBox 是一行已定位的文本，Y 为基线。
type TextBox struct {
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Font     string    `json:"font"`
	FontSize float64   `json:"fontSize"`
	Runs     []TextRun `json:"runs"`
}

// TextRun 是同色的一段文本，X 为相对 TextBox 起点的偏移。
type TextRun struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
	Color   Color   `json:"color"`
}

// ImageBox 描述图片位置；Data 为空时渲染占位框。
type ImageBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Data   []byte  `json:"-"`
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

var (
	titleColor       = MustHex("#f59e0b")
	wordColor        = MustHex("#1f2937")
	highlightColor   = MustHex("#ef4444")
	translationColor = MustHex("#6b7280")
	rowBorderColor   = MustHex("#e5e7eb")
	placeholderColor = MustHex("#e5e7eb")
)

// Sheet.Fonts 中的字体名称。
const (
	FontWord        = "word"
	FontTranslation = "translation"
)

// BuildSheet 为字母与示例单词生成练习单布局，超出页面高度的单词行自动换页。
func BuildSheet(letter LetterGlyph, words []SheetWord, opts SheetOptions) (*Sheet, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	opts = opts.withDefaults()
	contentW := opts.PageWidth - 2*opts.Margin
	if contentW <= 0 {
		return nil, ErrDegenerateGeometry
	}

	sheet := &Sheet{
		Letter: letter,
		Fonts:  map[string]FontResource{FontWord: opts.WordFont},
		Meta:   opts.Meta,
	}
	withTranslation := opts.TranslationFont.Src != ""
	if withTranslation {
		sheet.Fonts[FontTranslation] = opts.TranslationFont
	}

	page := Page{Width: opts.PageWidth, Height: opts.PageHeight}
	y := opts.Margin

	title, err := composeText(string([]rune{letter.Upper, ' ', letter.Lower}), nil, opts.Margin, y+titleFontSize*0.8, FontWord, titleFontSize, titleColor, opts)
	if err != nil {
		return nil, err
	}
	page.Texts = append(page.Texts, title)
	y += titleHeight

	guideOpts := opts.Guides
	for i := 0; i < opts.Bands; i++ {
		guides, err := Build(letter, contentW, opts.BandHeight, guideOpts)
		if err != nil {
			return nil, err
		}
		page.Bands = append(page.Bands, Band{X: opts.Margin, Y: y, Guides: guides})
		page.Rects = append(page.Rects, Rect{
			X: opts.Margin, Y: y, Width: contentW, Height: opts.BandHeight,
			StrokeColor: rowBorderColor, StrokeWidth: rowBorderWidth,
		})
		y += opts.BandHeight + bandGap
	}

	bottom := opts.PageHeight - opts.Margin
	for _, w := range words {
		if y+opts.RowHeight > bottom {
			sheet.Pages = append(sheet.Pages, page)
			page = Page{Width: opts.PageWidth, Height: opts.PageHeight}
			y = opts.Margin
		}
		row, err := composeRow(letter, w, y, contentW, withTranslation, opts)
		if err != nil {
			return nil, err
		}
		page.Rects = append(page.Rects, row.rect)
		page.Images = append(page.Images, row.image)
		page.Texts = append(page.Texts, row.texts...)
		y += opts.RowHeight + rowGap
	}
	sheet.Pages = append(sheet.Pages, page)
	return sheet, nil
}

type sheetRow struct {
	rect  Rect
	image ImageBox
	texts []TextBox
}

func composeRow(letter LetterGlyph, w SheetWord, y, contentW float64, withTranslation bool, opts SheetOptions) (sheetRow, error) {
	white := MustHex("#ffffff")
	row := sheetRow{
		rect: Rect{
			X: opts.Margin, Y: y, Width: contentW, Height: opts.RowHeight,
			StrokeColor: rowBorderColor, StrokeWidth: rowBorderWidth, FillColor: &white,
		},
	}
	imgY := y + (opts.RowHeight-imageSize)/2
	row.image = ImageBox{X: opts.Margin + imageGap, Y: imgY, Width: imageSize, Height: imageSize, Data: w.Image}

	textX := opts.Margin + imageGap + imageSize + imageGap
	spans := SplitHighlight(w.Word, string(letter.Lower))
	word, err := composeText(w.Word, spans, textX, y+wordBaselineOffset, FontWord, wordFontSize, wordColor, opts)
	if err != nil {
		return sheetRow{}, err
	}
	row.texts = append(row.texts, word)

	if withTranslation && w.Translation != "" {
		tr, err := composeText(w.Translation, nil, textX, y+wordBaselineOffset+transBaselineGap, FontTranslation, translationSize, translationColor, opts)
		if err != nil {
			return sheetRow{}, err
		}
		row.texts = append(row.texts, tr)
	}
	return row, nil
}

// composeText 把文本按高亮片段拆成多个 run，并用 Typesetter 计算每段的偏移。
func composeText(content string, spans []Span, x, baseline float64, font string, size float64, col Color, opts SheetOptions) (TextBox, error) {
	if spans == nil {
		spans = []Span{{Text: content}}
	}
	res := opts.WordFont
	if font == FontTranslation {
		res = opts.TranslationFont
	}
	tb := TextBox{X: x, Y: baseline, Font: font, FontSize: size}
	cursor := 0.0
	for _, sp := range spans {
		width, err := opts.Typesetter.TextWidth(sp.Text, res, size)
		if err != nil {
			return TextBox{}, fmt.Errorf("测量文本 %q 失败: %w", sp.Text, err)
		}
		c := col
		if sp.Match {
			c = highlightColor
		}
		tb.Runs = append(tb.Runs, TextRun{Content: sp.Text, X: cursor, Width: width, Color: c})
		cursor += width
	}
	return tb, nil
}

// PlaceholderColor 是缺少图片时占位框的颜色。
func PlaceholderColor() Color { return placeholderColor }

func (o SheetOptions) withDefaults() SheetOptions {
	if o.PageWidth <= 0 {
		o.PageWidth = defaultPageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = defaultPageHeight
	}
	if o.Margin <= 0 {
		o.Margin = defaultPageMargin
	}
	if o.Bands <= 0 {
		o.Bands = 2
	}
	if o.BandHeight <= 0 {
		o.BandHeight = defaultBandHeight
	}
	if o.RowHeight <= 0 {
		o.RowHeight = defaultRowHeight
	}
	if o.Guides.FontScale == 0 && o.Guides.Margin == (MarginPolicy{}) {
		glyphs := o.Guides.Glyphs
		o.Guides = DefaultOptions()
		o.Guides.Glyphs = glyphs
		o.Guides.LineScale = 0
	}
	if o.Guides.LineScale <= 0 {
		o.Guides.LineScale = PxToMm
	}
	if o.WordFont.Name == "" {
		o.WordFont.Name = FontWord
	}
	if o.TranslationFont.Name == "" {
		o.TranslationFont.Name = FontTranslation
	}
	return o
}
