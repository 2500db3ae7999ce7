package entity

// Label класс заболевания, который возвращает классификатор
type Label string

const (
	LabelBlight       Label = "Blight"         // Северный гельминтоспориоз
	LabelCommonRust   Label = "Common_Rust"    // Обыкновенная ржавчина
	LabelGrayLeafSpot Label = "Gray_Leaf_Spot" // Серая пятнистость листьев
	LabelHealthy      Label = "Healthy"        // Здоровый лист
)

// Labels возвращает метки в порядке выходов модели классификации.
func Labels() []Label {
	return []Label{LabelBlight, LabelCommonRust, LabelGrayLeafSpot, LabelHealthy}
}

// IsHealthy сообщает, что лист здоров и сегментация не нужна.
func (l Label) IsHealthy() bool {
	return l == LabelHealthy
}

// Valid проверяет, что метка входит в фиксированный набор.
func (l Label) Valid() bool {
	for _, known := range Labels() {
		if l == known {
			return true
		}
	}
	return false
}

// Classification результат классификатора
type Classification struct {
	Label      Label
	Confidence float64 // вероятность в диапазоне [0, 1]
}
