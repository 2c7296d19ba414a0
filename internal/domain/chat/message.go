package chat

// Messageは送信メッセージの抽象記述。UIへの変換はトランスポート側の仕事。
type Message interface{ isMessage() }

// ただのテキスト
type TextMessage struct {
	Text string
}

// 選択肢つきプロンプト
type Prompt struct {
	Text    string
	Choices []Choice
}

type Choice struct {
	Label string
	// 押したときに送り返されるSelectionのワイヤ表現
	Data string
}

func (TextMessage) isMessage() {}
func (Prompt) isMessage()      {}

func NewText(text string) TextMessage { return TextMessage{Text: text} }

func NewChoice(label string, sel Selection) Choice {
	return Choice{Label: label, Data: sel.Encode()}
}
