package domain

// Role classifies an account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// QuestionType selects which answer field of a Question is authoritative.
type QuestionType string

const (
	TypeMCQ         QuestionType = "mcq"
	TypeShortAnswer QuestionType = "short_answer"
	TypeDragDrop    QuestionType = "drag_drop"
)

// Difficulty labels accepted on questions.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// User is an account in the store. Password is a plaintext credential;
// the store offers a credential check, not a security guarantee.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Role       Role   `json:"role"`
	Password   string `json:"password,omitempty"`
	TotalScore int    `json:"totalScore"`
	CreatedAt  string `json:"createdAt"`
}

// Question keeps the flat wire shape shared with the remote endpoint:
// the three answer fields coexist and Type decides which one counts.
// AnswerKey returns the authoritative one as a typed variant.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	QuestionText  string       `json:"questionText"`
	Options       []string     `json:"options,omitempty"`
	CorrectIndex  *int         `json:"correctIndex,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	CorrectOrder  []int        `json:"correctOrder,omitempty"`
	Difficulty    string       `json:"difficulty"`
	Tags          []string     `json:"tags"`
	CreatedAt     string       `json:"createdAt"`
}

// Lesson is rich lesson content; ContentHTML is opaque to the store.
type Lesson struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ContentHTML string   `json:"contentHtml"`
	Grade       string   `json:"grade"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
}

// CloudSettings configures the remote spreadsheet endpoint.
// LastSynced is stamped only by manual sync, never by auto-push.
type CloudSettings struct {
	SheetURL   string `json:"sheetUrl"`
	IsEnabled  bool   `json:"isEnabled"`
	LastSynced string `json:"lastSynced,omitempty"`
}

// Aggregate is the unit of persistence and of remote replication: all
// three collections travel together as one JSON document.
type Aggregate struct {
	Users     []User     `json:"users"`
	Questions []Question `json:"questions"`
	Lessons   []Lesson   `json:"lessons"`
}

// AuthResponse pairs the authenticated user with a session token.
// The token is deterministic per user; it guarantees uniqueness only.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LeaderboardEntry is one ranked student row.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	TotalScore int    `json:"totalScore"`
}

// Leaderboard is an ordered student ranking snapshot.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt string             `json:"updatedAt"`
}

// AnswerResult summarizes one checked answer.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
}
