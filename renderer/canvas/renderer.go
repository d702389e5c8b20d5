package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/tracepad/fonts"
	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/renderer"
)

const (
	defaultBorderWidth = 0.2
	placeholderRadius  = 2.0
)

// Renderer draws lesson sheets via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // named fonts referenced as font:<name>
}

// FontPrefix marks a font src that refers to a named entry of Options.Fonts.
const FontPrefix = "font:"

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			path := res.Path
			if !filepath.IsAbs(path) && opts.BaseDir != "" {
				path = filepath.Join(opts.BaseDir, path)
			}
			data, _ := os.ReadFile(path) // 读取失败时在实际使用处报错
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Render renders the sheet into a PDF byte slice.
func (r *Renderer) Render(sheet *layout.Sheet) ([]byte, error) {
	if sheet == nil {
		return nil, fmt.Errorf("练习单为空")
	}
	if len(sheet.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, sheet.Pages[0].Width, sheet.Pages[0].Height, nil)
	r.applyMeta(writer, sheet.Meta)
	for i, page := range sheet.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, sheet.Fonts); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Typesetter 接口。
// 约定：fontSize 与返回值均为毫米（mm）；创建字体面时换算为 pt。
func (r *Renderer) TextWidth(content string, font layout.FontResource, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(content), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, fontSet map[string]layout.FontResource) error {
	// 背景形状在描红带与文本之前绘制
	r.drawRects(ctx, page.Rects)
	for _, band := range page.Bands {
		r.drawBand(ctx, band)
	}
	for _, tb := range page.Texts {
		fontRes := resolveFontResource(tb.Font, fontSet)
		if err := r.drawTextBox(ctx, tb, fontRes); err != nil {
			return err
		}
	}
	r.drawImages(ctx, page.Images)
	return nil
}

// drawBand 绘制一条描红练习带：引导线在下，淡色字形在上。
func (r *Renderer) drawBand(ctx *canvas.Context, band layout.Band) {
	g := band.Guides
	if g == nil {
		return
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	for _, ln := range g.Lines {
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(ln.Width)
		ctx.SetDashes(0, ln.Dash...)
		p := &canvas.Path{}
		p.MoveTo(ln.X1, ln.Y1)
		p.LineTo(ln.X2, ln.Y2)
		ctx.DrawPath(band.X, band.Y, p)
	}
	for _, gl := range g.Glyphs {
		if gl.Outline.IsEmpty() {
			continue
		}
		ctx.SetFillColor(colorFromLayout(gl.Fill))
		ctx.SetStrokeColor(colorFromLayout(gl.Stroke))
		ctx.SetStrokeWidth(gl.StrokeWidth)
		ctx.SetDashes(0, gl.Dash...)
		ctx.DrawPath(band.X, band.Y, outlinePath(gl.Outline))
	}
	ctx.SetDashes(0)
}

func outlinePath(o layout.Outline) *canvas.Path {
	p := &canvas.Path{}
	for _, seg := range o.Segments {
		a := seg.Args
		switch seg.Op {
		case layout.OpMoveTo:
			p.MoveTo(a[0].X, a[0].Y)
		case layout.OpLineTo:
			p.LineTo(a[0].X, a[0].Y)
		case layout.OpQuadTo:
			p.QuadTo(a[0].X, a[0].Y, a[1].X, a[1].Y)
		case layout.OpCubeTo:
			p.CubeTo(a[0].X, a[0].Y, a[1].X, a[1].Y, a[2].X, a[2].Y)
		case layout.OpClose:
			p.Close()
		}
	}
	return p
}

// drawTextBox 按 run 逐段绘制文本；TextBox.Y 为基线，单位 mm。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fontRes layout.FontResource) error {
	for _, run := range tb.Runs {
		if run.Content == "" {
			continue
		}
		face, err := r.fontFace(fontRes, toPt(tb.FontSize), run.Color)
		if err != nil {
			return err
		}
		textLine := canvas.NewTextLine(face, run.Content, canvas.Left)
		ctx.DrawText(tb.X+run.X, tb.Y, textLine)
	}
	return nil
}

// drawImages 绘制单词插图；缺少或无法解码的图片以占位框代替。
func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) {
	for _, img := range images {
		var imgData image.Image
		if len(img.Data) > 0 {
			decoded, _, err := image.Decode(bytes.NewReader(img.Data))
			if err == nil && decoded.Bounds().Dx() > 0 {
				imgData = decoded
			}
		}
		if imgData == nil || img.Width <= 0 {
			r.drawPlaceholder(ctx, img)
			continue
		}
		dpmm := float64(imgData.Bounds().Dx()) / img.Width
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(img.X, img.Y, imgData, canvas.DPMM(dpmm))
	}
}

func (r *Renderer) drawPlaceholder(ctx *canvas.Context, img layout.ImageBox) {
	ctx.SetFillColor(colorFromLayout(layout.PlaceholderColor()))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(img.X, img.Y, canvas.RoundedRectangle(img.Width, img.Height, placeholderRadius))
}

// drawRects 绘制矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultBorderWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		r.fontFamilies[key] = fallback
		return fallback, nil
	}

	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, canvas.FontRegular)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if name, ok := strings.CutPrefix(src, FontPrefix); ok {
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到字体资源 %s%s", FontPrefix, name)
	}
	if fonts.IsBuiltin(src) {
		return fonts.Load(src)
	}
	// Path based
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 font: 或 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load("builtin:" + fonts.BuiltinBold)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("tracepad-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func resolveFontResource(name string, fontSet map[string]layout.FontResource) layout.FontResource {
	if font, ok := fontSet[name]; ok {
		return font
	}
	// 未登记的名称统一使用单词字体，缺少时交给 fallback
	return fontSet[layout.FontWord]
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s", font.Name, font.Src)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
