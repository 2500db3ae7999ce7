package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото листа
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID             int64     // Telegram User ID
	ChatID         int64     // Telegram Chat ID
	State          UserState // Текущее состояние пользователя
	LastAnalysisID string    // ID последнего анализа, пусто если анализов не было
	Checks         int       // сколько листьев проверил пользователь
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// RecordAnalysis запоминает последний анализ и возвращает пользователя в меню.
func (u *User) RecordAnalysis(analysisID string) {
	u.LastAnalysisID = analysisID
	u.Checks++
	u.State = StateMainMenu
}
