package entity

import "fmt"

// Mask бинарная маска того же пространственного охвата, что и исходное изображение
type Mask struct {
	Width  int
	Height int
	Pix    []bool // построчно, Pix[y*Width+x]
}

// NewMask создаёт пустую маску заданного размера.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At возвращает значение пикселя; за пределами маски — false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set устанавливает значение пикселя, координаты вне маски игнорируются.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Fill закрашивает прямоугольник.
func (m *Mask) Fill(b BoundingBox) {
	b = b.Clamp(m.Width, m.Height)
	for y := b.YMin; y < b.YMax; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := b.XMin; x < b.XMax; x++ {
			row[x] = true
		}
	}
}

// Count число ненулевых пикселей
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Empty сообщает, что в маске нет ни одного ненулевого пикселя.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// SameSize проверяет совпадение размеров двух масок.
func (m *Mask) SameSize(other *Mask) bool {
	return m.Width == other.Width && m.Height == other.Height
}

// Union объединяет (логическое ИЛИ) другую маску с текущей на месте.
func (m *Mask) Union(other *Mask) error {
	if !m.SameSize(other) {
		return fmt.Errorf("union %dx%d with %dx%d: %w", m.Width, m.Height, other.Width, other.Height, ErrMaskSizeMismatch)
	}
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = true
		}
	}
	return nil
}

// Intersect возвращает новую маску — пересечение (логическое И).
func (m *Mask) Intersect(other *Mask) (*Mask, error) {
	if !m.SameSize(other) {
		return nil, fmt.Errorf("intersect %dx%d with %dx%d: %w", m.Width, m.Height, other.Width, other.Height, ErrMaskSizeMismatch)
	}
	out := NewMask(m.Width, m.Height)
	for i := range m.Pix {
		out.Pix[i] = m.Pix[i] && other.Pix[i]
	}
	return out, nil
}

// ResizeNearest масштабирует маску методом ближайшего соседа.
func (m *Mask) ResizeNearest(width, height int) *Mask {
	out := NewMask(width, height)
	if m.Width == 0 || m.Height == 0 {
		return out
	}
	for y := 0; y < height; y++ {
		sy := y * m.Height / height
		for x := 0; x < width; x++ {
			sx := x * m.Width / width
			out.Pix[y*width+x] = m.Pix[sy*m.Width+sx]
		}
	}
	return out
}

// UnionMasks объединяет набор масок размера width×height.
// Без масок возвращается пустая маска.
func UnionMasks(width, height int, masks ...*Mask) (*Mask, error) {
	out := NewMask(width, height)
	for _, mk := range masks {
		if err := out.Union(mk); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ProbabilityMap попиксельные вероятности поражения в разрешении модели
type ProbabilityMap struct {
	Width  int
	Height int
	Values []float32
}

// Binarize переводит вероятности в маску: пиксель поражён, если p > threshold.
func (p *ProbabilityMap) Binarize(threshold float32) *Mask {
	out := NewMask(p.Width, p.Height)
	for i, v := range p.Values {
		if i >= len(out.Pix) {
			break
		}
		out.Pix[i] = v > threshold
	}
	return out
}
