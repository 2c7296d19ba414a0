// Package chat は会話の入出力をトランスポート非依存で表す型を持つ。
// LINE固有のenvelopeはinternal/lineが剥がし、コアはこの形だけを見る。
package chat

import "strings"

// Commandはボタン選択から来る構造化コマンド
type Command string

const (
	CmdMenu         Command = "MENU"
	CmdCancel       Command = "CANCEL"
	CmdOrder        Command = "ORDER"
	CmdColors       Command = "COLORS"
	CmdColor        Command = "COLOR"
	CmdSize         Command = "SIZE"
	CmdQty          Command = "QTY"
	CmdItemOK       Command = "ITEM_OK"
	CmdFinalConfirm Command = "FINAL_CONFIRM"
	CmdAdmin        Command = "ADMIN"
)

// 1回のwebhook配送で正規化された1イベント
type Event struct {
	CustomerID string
	ReplyToken string
	Payload    Payload
}

// Payloadは自由入力テキストか構造化選択のどちらか
type Payload interface{ isPayload() }

type Text struct {
	Body string
}

type Selection struct {
	Command Command
	// ボタンに焼き込まれた過去の選択のエコー（anti-skip判定に使う）
	Args []string
}

func (Text) isPayload()      {}
func (Selection) isPayload() {}

const commandPrefix = "BOT"

// ParsePayloadは受信テキストをPayloadへ変換する。
// "BOT:SIZE:Navy:M" → Selection{SIZE, [Navy M]}、それ以外は自由入力。
func ParsePayload(text string) Payload {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, commandPrefix+":") {
		return Text{Body: text}
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 || parts[1] == "" {
		return Text{Body: text}
	}
	return Selection{Command: Command(parts[1]), Args: parts[2:]}
}

// Encodeはボタンに埋め込むワイヤ表現を返す
func (s Selection) Encode() string {
	parts := append([]string{commandPrefix, string(s.Command)}, s.Args...)
	return strings.Join(parts, ":")
}

func (s Selection) Arg(i int) string {
	if i < 0 || i >= len(s.Args) {
		return ""
	}
	return s.Args[i]
}
