package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/domain/chat"
	"app/internal/domain/model"
	"app/internal/lock"
	"app/internal/repository"
	"app/internal/validator"
)

// Messengerは返信とプッシュ通知の送信先。LINE実装はinternal/line。
type Messenger interface {
	Reply(ctx context.Context, replyToken string, msgs []chat.Message) error
	Push(ctx context.Context, to string, msgs []chat.Message) error
}

// ConversationUsecaseは会話ステートマシン本体。
// 1イベントずつ、顧客単位のロックの中で状態を進める。
type ConversationUsecase struct {
	cfg      config.Config
	sessions repository.SessionRepository
	stock    *StockUsecase
	orders   *OrderUsecase
	msgr     Messenger
	ids      IDGenerator
	locks    *lock.KeyedMutex
	logger   *log.Logger
}

func NewConversationUsecase(
	cfg config.Config,
	sessions repository.SessionRepository,
	stock *StockUsecase,
	orders *OrderUsecase,
	msgr Messenger,
	ids IDGenerator,
	logger *log.Logger,
) *ConversationUsecase {
	if logger == nil {
		logger = log.Default()
	}
	return &ConversationUsecase{
		cfg:      cfg,
		sessions: sessions,
		stock:    stock,
		orders:   orders,
		msgr:     msgr,
		ids:      ids,
		locks:    lock.New(),
		logger:   logger,
	}
}

// HandleEventは正規化済みイベントを1つ処理する。
// 同一顧客のイベントはここで直列化される（webhookの重複・連打対策）。
func (u *ConversationUsecase) HandleEvent(ctx context.Context, ev chat.Event) error {
	if ev.CustomerID == "" {
		return nil
	}

	u.locks.Lock(ev.CustomerID)
	defer u.locks.Unlock(ev.CustomerID)

	s, err := u.sessions.Get(ctx, ev.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		s = model.Session{State: model.StateIdle}
	} else if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	switch p := ev.Payload.(type) {
	case chat.Text:
		return u.handleText(ctx, ev, s, p.Body)
	case chat.Selection:
		return u.handleSelection(ctx, ev, s, p)
	default:
		return u.sendMenu(ctx, ev.ReplyToken)
	}
}

// ---------- 自由入力 ----------

func (u *ConversationUsecase) handleText(ctx context.Context, ev chat.Event, s model.Session, text string) error {
	text = strings.TrimSpace(text)

	// 管理者の注文クローズ（CLOSE:HDxxxx）
	if u.isOperator(ev.CustomerID) && strings.HasPrefix(strings.ToUpper(text), "CLOSE:") {
		return u.closeByOperator(ctx, ev, text)
	}

	// どの状態からでもメニューへ戻れる
	if isMenuText(text) {
		if err := u.sessions.Clear(ctx, ev.CustomerID); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return u.sendMenu(ctx, ev.ReplyToken)
	}

	// 担当者チャット中は全文を転送する
	if s.State == model.StateAdminChat {
		return u.forwardToOperators(ctx, ev, text)
	}

	switch s.State {
	case model.StateWaitColor:
		return u.applyColor(ctx, ev, text)
	case model.StateWaitSize:
		return u.applySize(ctx, ev, s, text)
	case model.StateWaitQty:
		return u.applyQty(ctx, ev, s, text)
	case model.StateWaitName:
		return u.applyName(ctx, ev, s, text)
	case model.StateWaitPhone:
		return u.applyPhone(ctx, ev, s, text)
	case model.StateWaitAddress:
		return u.applyAddress(ctx, ev, s, text)
	case model.StateWaitItemConfirm:
		// 確認待ちの自由入力は保留中の確認を出し直す
		return u.reply(ctx, ev.ReplyToken, u.itemConfirmPrompt(s.Data))
	case model.StateWaitFinalConfirm:
		return u.reply(ctx, ev.ReplyToken, u.finalConfirmPrompt(s.Data))
	default:
		return u.sendMenu(ctx, ev.ReplyToken)
	}
}

// ---------- ボタン選択 ----------

func (u *ConversationUsecase) handleSelection(ctx context.Context, ev chat.Event, s model.Session, sel chat.Selection) error {
	switch sel.Command {
	case chat.CmdMenu, chat.CmdCancel:
		if err := u.sessions.Clear(ctx, ev.CustomerID); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return u.sendMenu(ctx, ev.ReplyToken)

	case chat.CmdAdmin:
		return u.enterAdminChat(ctx, ev, s)

	case chat.CmdOrder:
		return u.startOrder(ctx, ev)

	case chat.CmdColors:
		return u.listColors(ctx, ev)

	case chat.CmdColor:
		if s.State != model.StateWaitColor {
			return u.rejectStale(ctx, ev)
		}
		return u.applyColor(ctx, ev, sel.Arg(0))

	case chat.CmdSize:
		if s.State != model.StateWaitSize {
			return u.rejectStale(ctx, ev)
		}
		// anti-skip: ボタンに焼かれた色がセッションと一致すること
		if model.NormColor(sel.Arg(0)) != model.NormColor(s.Data.Color) {
			return u.rejectStale(ctx, ev)
		}
		return u.applySize(ctx, ev, s, sel.Arg(1))

	case chat.CmdQty:
		if s.State != model.StateWaitQty {
			return u.rejectStale(ctx, ev)
		}
		if model.NormColor(sel.Arg(0)) != model.NormColor(s.Data.Color) ||
			model.NormSize(sel.Arg(1)) != model.NormSize(s.Data.Size) {
			return u.rejectStale(ctx, ev)
		}
		return u.applyQty(ctx, ev, s, sel.Arg(2))

	case chat.CmdItemOK:
		if s.State != model.StateWaitItemConfirm {
			return u.rejectStale(ctx, ev)
		}
		if model.NormColor(sel.Arg(0)) != model.NormColor(s.Data.Color) ||
			model.NormSize(sel.Arg(1)) != model.NormSize(s.Data.Size) ||
			sel.Arg(2) != strconv.FormatInt(s.Data.Qty, 10) {
			return u.rejectStale(ctx, ev)
		}
		return u.askName(ctx, ev, s)

	case chat.CmdFinalConfirm:
		return u.confirm(ctx, ev, sel.Arg(0))

	default:
		return u.sendMenu(ctx, ev.ReplyToken)
	}
}

// ---------- 注文フロー ----------

func (u *ConversationUsecase) startOrder(ctx context.Context, ev chat.Event) error {
	colors, err := u.orderableColors(ctx)
	if err != nil {
		return fmt.Errorf("list colors: %w", err)
	}
	if len(colors) == 0 {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("สินค้าหมดชั่วคราว ❌ กรุณาลองใหม่ภายหลัง"))
	}

	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitColor, model.SessionData{}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, u.colorPrompt(colors))
}

func (u *ConversationUsecase) applyColor(ctx context.Context, ev chat.Event, input string) error {
	colors, err := u.orderableColors(ctx)
	if err != nil {
		return fmt.Errorf("list colors: %w", err)
	}

	color, ok := matchColor(colors, input)
	if !ok {
		// 進めずに同じ状態で聞き直す
		msgs := []chat.Message{chat.NewText("สีไม่ถูกต้อง ❌")}
		if len(colors) > 0 {
			msgs = append(msgs, u.colorPrompt(colors))
		}
		return u.reply(ctx, ev.ReplyToken, msgs...)
	}

	sizes, err := u.stock.AvailableSizes(ctx, color)
	if err != nil {
		return fmt.Errorf("list sizes: %w", err)
	}
	if len(sizes) == 0 {
		return u.reply(ctx, ev.ReplyToken,
			chat.NewText(fmt.Sprintf("สี %s หมดทุกไซส์แล้ว ❌", color)),
			u.colorPrompt(colors))
	}

	data := model.SessionData{Color: color}
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitSize, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, u.sizePrompt(ctx, color, sizes))
}

func (u *ConversationUsecase) applySize(ctx context.Context, ev chat.Event, s model.Session, input string) error {
	color := s.Data.Color
	sizes, err := u.stock.AvailableSizes(ctx, color)
	if err != nil {
		return fmt.Errorf("list sizes: %w", err)
	}

	size, ok := matchSize(sizes, input)
	if !ok {
		msgs := []chat.Message{chat.NewText("ไซส์ไม่ถูกต้อง ❌")}
		if len(sizes) > 0 {
			msgs = append(msgs, u.sizePrompt(ctx, color, sizes))
		}
		return u.reply(ctx, ev.ReplyToken, msgs...)
	}

	avail, err := u.stock.Stock(ctx, color, size)
	if err != nil {
		return fmt.Errorf("get stock: %w", err)
	}
	price, err := u.priceOrDefault(ctx, color, size)
	if err != nil {
		return fmt.Errorf("get price: %w", err)
	}

	data := s.Data
	data.Size = size
	data.Price = price
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitQty, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, u.qtyPrompt(color, size, price, avail))
}

func (u *ConversationUsecase) applyQty(ctx context.Context, ev chat.Event, s model.Session, input string) error {
	color, size := s.Data.Color, s.Data.Size

	avail, err := u.stock.Stock(ctx, color, size)
	if err != nil {
		return fmt.Errorf("get stock: %w", err)
	}

	qty, ok := validator.ParseQty(input, avail)
	if !ok {
		return u.reply(ctx, ev.ReplyToken,
			chat.NewText(fmt.Sprintf("จำนวนไม่ถูกต้อง ❌ (มีของ %d ตัว)", avail)),
			u.qtyPrompt(color, size, s.Data.Price, avail))
	}

	data := s.Data
	data.Qty = qty
	data.Total = qty * data.Price
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitItemConfirm, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, u.itemConfirmPrompt(data))
}

func (u *ConversationUsecase) askName(ctx context.Context, ev chat.Event, s model.Session) error {
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitName, s.Data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, chat.NewText("พิมพ์ชื่อ-นามสกุลผู้รับ:"))
}

func (u *ConversationUsecase) applyName(ctx context.Context, ev chat.Event, s model.Session, text string) error {
	if !validator.ValidName(text) {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("ชื่อไม่ถูกต้อง ❌ กรุณาพิมพ์ชื่อ-นามสกุล"))
	}
	data := s.Data
	data.Name = strings.TrimSpace(text)
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitPhone, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, chat.NewText("พิมพ์เบอร์โทร (10 หลัก):"))
}

func (u *ConversationUsecase) applyPhone(ctx context.Context, ev chat.Event, s model.Session, text string) error {
	if !validator.ValidPhone(text) {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("เบอร์ไม่ถูกต้อง ❌ ต้องมี 10 หลัก"))
	}
	data := s.Data
	data.Phone = validator.NormalizePhone(text)
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitAddress, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, chat.NewText("พิมพ์ที่อยู่จัดส่ง:"))
}

func (u *ConversationUsecase) applyAddress(ctx context.Context, ev chat.Event, s model.Session, text string) error {
	if !validator.ValidAddress(text) {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("ที่อยู่สั้นเกินไป ❌ กรุณาพิมพ์ที่อยู่แบบเต็ม"))
	}

	data := s.Data
	data.Address = strings.TrimSpace(text)
	// 最終確認画面に入るタイミングで冪等トークンを発行する
	data.ConfirmationToken = u.ids.NewID()
	data.ConfirmationLock = false
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitFinalConfirm, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, u.finalConfirmPrompt(data))
}

func (u *ConversationUsecase) itemConfirmPrompt(d model.SessionData) chat.Prompt {
	summary := fmt.Sprintf("🧾 สรุปสินค้า\n%s / %s\n%d ตัว\nรวม %d บาท", d.Color, d.Size, d.Qty, d.Total)
	itemOK := chat.Selection{Command: chat.CmdItemOK, Args: []string{d.Color, d.Size, strconv.FormatInt(d.Qty, 10)}}
	return chat.Prompt{
		Text: summary,
		Choices: u.withStandardChoices([]chat.Choice{
			chat.NewChoice("✅ ยืนยันสินค้า", itemOK),
		}),
	}
}

func (u *ConversationUsecase) finalConfirmPrompt(d model.SessionData) chat.Prompt {
	summary := fmt.Sprintf(
		"📦 ตรวจสอบก่อนยืนยัน\n%s / %s\n%d ตัว\nรวม %d บาท\n\n%s\n%s\n%s",
		d.Color, d.Size, d.Qty, d.Total, d.Name, d.Phone, d.Address,
	)
	confirm := chat.Selection{Command: chat.CmdFinalConfirm, Args: []string{d.ConfirmationToken}}
	return chat.Prompt{
		Text: summary,
		Choices: u.withStandardChoices([]chat.Choice{
			chat.NewChoice("✅ ยืนยันคำสั่งซื้อ", confirm),
		}),
	}
}

// ---------- 確定（予約プロトコル） ----------

func (u *ConversationUsecase) confirm(ctx context.Context, ev chat.Event, token string) error {
	// 取り直したセッションだけを信用する
	fresh, err := u.sessions.Get(ctx, ev.CustomerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load session: %w", err)
	}

	if errors.Is(err, repository.ErrNotFound) ||
		fresh.State != model.StateWaitFinalConfirm ||
		fresh.Data.ConfirmationToken == "" ||
		fresh.Data.ConfirmationToken != token {
		// セッションが消えた後に届いた再配送はtokenで照合する
		if token != "" {
			if o, err2 := u.orders.FindByToken(ctx, token); err2 == nil {
				return u.replyOrderConfirmed(ctx, ev.ReplyToken, o.OrderID)
			}
		}
		return u.rejectStale(ctx, ev)
	}

	d := fresh.Data
	if d.Color == "" || d.Size == "" || d.Qty <= 0 || d.Name == "" || d.Phone == "" || d.Address == "" {
		// 壊れたセッションは黙ってメニューへ戻す
		_ = u.sessions.Clear(ctx, ev.CustomerID)
		return u.sendMenu(ctx, ev.ReplyToken)
	}

	// 先行イベントが処理中ならここで止める
	if d.ConfirmationLock {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("กำลังดำเนินการ กรุณารอสักครู่ ⏳"))
	}

	// 副作用より前にロックを永続化する
	d.ConfirmationLock = true
	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateWaitFinalConfirm, d); err != nil {
		return fmt.Errorf("persist confirmation lock: %w", err)
	}

	// 同じtokenの注文が既にあれば完了済みとして返す
	if o, err := u.orders.FindByToken(ctx, d.ConfirmationToken); err == nil {
		_ = u.sessions.Clear(ctx, ev.CustomerID)
		return u.replyOrderConfirmed(ctx, ev.ReplyToken, o.OrderID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		u.unlockConfirmation(ctx, ev.CustomerID, d)
		return fmt.Errorf("find order by token: %w", err)
	}

	ok, remaining, err := u.stock.Deduct(ctx, d.Color, d.Size, d.Qty)
	if err != nil {
		u.unlockConfirmation(ctx, ev.CustomerID, d)
		return fmt.Errorf("deduct stock: %w", err)
	}
	if !ok {
		// 在庫が先に減っていた。失敗ではなく選び直しへ。
		_ = u.sessions.Clear(ctx, ev.CustomerID)
		return u.reply(ctx, ev.ReplyToken, chat.Prompt{
			Text: fmt.Sprintf("ขออภัย สต๊อกมีการเปลี่ยนแปลง เหลือ %d ตัว ❌\nกรุณาเลือกใหม่อีกครั้ง", remaining),
			Choices: u.withStandardChoices([]chat.Choice{
				chat.NewChoice("🛒 สั่งซื้อใหม่", chat.Selection{Command: chat.CmdOrder}),
			}),
		})
	}

	order, created, err := u.orders.PlaceOrder(ctx, PlaceOrderInput{CustomerID: ev.CustomerID, Data: d})
	if err != nil {
		// この経路は在庫だけ減った状態になる。運用で戻すためにログへ残す。
		u.logger.Printf("ERROR create order (stock already deducted, %s/%s qty=%d token=%s): %v",
			d.Color, d.Size, d.Qty, d.ConfirmationToken, err)
		_ = u.sessions.Clear(ctx, ev.CustomerID)
		return u.reply(ctx, ev.ReplyToken, chat.NewText("ระบบขัดข้อง กรุณาติดต่อเจ้าหน้าที่ 🙏"))
	}

	if created {
		u.notifyNewOrder(ctx, order, remaining)
	}

	_ = u.sessions.Clear(ctx, ev.CustomerID)
	return u.replyOrderConfirmed(ctx, ev.ReplyToken, order.OrderID)
}

// ロックを立てた後の取り下げ（best-effort）
func (u *ConversationUsecase) unlockConfirmation(ctx context.Context, customerID string, d model.SessionData) {
	d.ConfirmationLock = false
	if err := u.sessions.Set(ctx, customerID, model.StateWaitFinalConfirm, d); err != nil {
		u.logger.Printf("WARN unlock confirmation for %s: %v", customerID, err)
	}
}

// ---------- 担当者まわり ----------

func (u *ConversationUsecase) enterAdminChat(ctx context.Context, ev chat.Event, s model.Session) error {
	// 直前の注文フローの様子を担当者に渡す
	snapshot := "จากเมนูหลัก"
	if s.Data.Color != "" {
		snapshot = fmt.Sprintf("%s / %s / %d ตัว", s.Data.Color, s.Data.Size, s.Data.Qty)
	}
	u.notifyOperators(ctx, fmt.Sprintf("👩‍💼 ลูกค้า %s ขอคุยกับเจ้าหน้าที่\nสถานะล่าสุด: %s", ev.CustomerID, snapshot))

	if err := u.sessions.Set(ctx, ev.CustomerID, model.StateAdminChat, model.SessionData{}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, chat.Prompt{
		Text: "👩‍💼 เชื่อมต่อเจ้าหน้าที่แล้ว\nพิมพ์ข้อความได้เลย",
		Choices: []chat.Choice{
			chat.NewChoice("🏠 กลับสู่เมนู", chat.Selection{Command: chat.CmdMenu}),
		},
	})
}

func (u *ConversationUsecase) forwardToOperators(ctx context.Context, ev chat.Event, text string) error {
	u.notifyOperators(ctx, fmt.Sprintf("💬 จากลูกค้า %s:\n%s", ev.CustomerID, text))
	return u.reply(ctx, ev.ReplyToken, chat.Prompt{
		Text: "ส่งถึงเจ้าหน้าที่แล้ว ✅",
		Choices: []chat.Choice{
			chat.NewChoice("🏠 กลับสู่เมนู", chat.Selection{Command: chat.CmdMenu}),
		},
	})
}

func (u *ConversationUsecase) closeByOperator(ctx context.Context, ev chat.Event, text string) error {
	orderID := strings.TrimSpace(text[len("CLOSE:"):])
	err := u.orders.Close(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return u.reply(ctx, ev.ReplyToken, chat.NewText(fmt.Sprintf("❌ ไม่พบออเดอร์ %s", orderID)))
	}
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	return u.reply(ctx, ev.ReplyToken, chat.NewText(fmt.Sprintf("✅ ปิดออเดอร์ %s แล้ว", orderID)))
}

// 新規注文の通知と在庫僅少の警告。失敗しても注文完了は止めない。
func (u *ConversationUsecase) notifyNewOrder(ctx context.Context, o model.Order, remaining int64) {
	u.notifyOperators(ctx, fmt.Sprintf(
		"🔥 NEW ORDER (HARDY)\n\nORDER ID: %s\nชื่อ: %s\nเบอร์: %s\nที่อยู่: %s\n\nสี: %s | ไซส์: %s | จำนวน: %d\nราคา/ตัว: %d บาท\nยอดรวม: %d บาท\nคงเหลือสต๊อก: %d",
		o.OrderID, o.Name, o.Phone, o.Address, o.Color, o.Size, o.Qty, o.Price, o.Total, remaining,
	))
	if remaining <= u.cfg.LowStockAlert {
		u.notifyOperators(ctx, fmt.Sprintf("⚠ STOCK LOW: %s %s เหลือ %d", o.Color, o.Size, remaining))
	}
}

func (u *ConversationUsecase) notifyOperators(ctx context.Context, text string) {
	for _, id := range u.cfg.AdminUserIDs {
		if err := u.msgr.Push(ctx, id, []chat.Message{chat.NewText(text)}); err != nil {
			u.logger.Printf("WARN notify operator %s: %v", id, err)
		}
	}
}

func (u *ConversationUsecase) isOperator(customerID string) bool {
	for _, id := range u.cfg.AdminUserIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

// ---------- 画面部品 ----------

func (u *ConversationUsecase) sendMenu(ctx context.Context, replyToken string) error {
	return u.reply(ctx, replyToken, u.menuPrompt())
}

func (u *ConversationUsecase) menuPrompt() chat.Prompt {
	return chat.Prompt{
		Text: "👖 HARDY\nเลือกเมนู:",
		Choices: []chat.Choice{
			chat.NewChoice("🛒 สั่งซื้อ", chat.Selection{Command: chat.CmdOrder}),
			chat.NewChoice("🎨 ดูสี", chat.Selection{Command: chat.CmdColors}),
			chat.NewChoice("👩‍💼 คุยกับเจ้าหน้าที่", chat.Selection{Command: chat.CmdAdmin}),
		},
	}
}

func (u *ConversationUsecase) colorPrompt(colors []string) chat.Prompt {
	choices := make([]chat.Choice, 0, len(colors)+2)
	for _, c := range colors {
		choices = append(choices, chat.NewChoice(c, chat.Selection{Command: chat.CmdColor, Args: []string{c}}))
	}
	return chat.Prompt{Text: "🎨 เลือกสี:", Choices: u.withStandardChoices(choices)}
}

func (u *ConversationUsecase) sizePrompt(ctx context.Context, color string, sizes []string) chat.Prompt {
	choices := make([]chat.Choice, 0, len(sizes)+2)
	for _, sz := range sizes {
		price, err := u.priceOrDefault(ctx, color, sz)
		if err != nil {
			price = u.cfg.DefaultPrice
		}
		label := fmt.Sprintf("%s • %d฿", sz, price)
		choices = append(choices, chat.NewChoice(label, chat.Selection{Command: chat.CmdSize, Args: []string{color, sz}}))
	}
	return chat.Prompt{
		Text:    fmt.Sprintf("👖 %s\nเลือกไซส์:", color),
		Choices: u.withStandardChoices(choices),
	}
}

func (u *ConversationUsecase) qtyPrompt(color string, size string, price int64, avail int64) chat.Prompt {
	// ボタンは1..min(avail,5)。それ以上は数字を直接入力してもらう。
	n := avail
	if n > 5 {
		n = 5
	}
	choices := make([]chat.Choice, 0, int(n)+2)
	for i := int64(1); i <= n; i++ {
		qs := strconv.FormatInt(i, 10)
		choices = append(choices, chat.NewChoice(qs, chat.Selection{Command: chat.CmdQty, Args: []string{color, size, qs}}))
	}
	return chat.Prompt{
		Text:    fmt.Sprintf("📦 %s / %s\nราคา %d บาท มีของ %d ตัว\nเลือกจำนวน (หรือพิมพ์ตัวเลข):", color, size, price, avail),
		Choices: u.withStandardChoices(choices),
	}
}

func (u *ConversationUsecase) listColors(ctx context.Context, ev chat.Event) error {
	colors, err := u.orderableColors(ctx)
	if err != nil {
		return fmt.Errorf("list colors: %w", err)
	}
	if len(colors) == 0 {
		return u.reply(ctx, ev.ReplyToken, chat.NewText("สินค้าหมดชั่วคราว ❌"))
	}

	var b strings.Builder
	b.WriteString("👖 HARDY Utility Chino\n")
	for _, c := range colors {
		sizes, err := u.stock.AvailableSizes(ctx, c)
		if err != nil {
			return fmt.Errorf("list sizes: %w", err)
		}
		price, err := u.priceOrDefault(ctx, c, firstOr(sizes, ""))
		if err != nil {
			price = u.cfg.DefaultPrice
		}
		fmt.Fprintf(&b, "\n• %s — %s (%d฿)", c, strings.Join(sizes, ", "), price)
	}
	return u.reply(ctx, ev.ReplyToken, chat.Prompt{
		Text: b.String(),
		Choices: u.withStandardChoices([]chat.Choice{
			chat.NewChoice("🛒 สั่งซื้อ", chat.Selection{Command: chat.CmdOrder}),
		}),
	})
}

func (u *ConversationUsecase) rejectStale(ctx context.Context, ev chat.Event) error {
	return u.reply(ctx, ev.ReplyToken,
		chat.NewText("ปุ่มนี้หมดอายุแล้ว ❌ กรุณาเลือกจากเมนูล่าสุด"),
		u.menuPrompt())
}

func (u *ConversationUsecase) replyOrderConfirmed(ctx context.Context, replyToken string, orderID string) error {
	return u.reply(ctx, replyToken, chat.Prompt{
		Text:    fmt.Sprintf("รับออเดอร์แล้ว ✅\nORDER ID: %s\nแอดมินจะติดต่อกลับเพื่อสรุปชำระเงิน/จัดส่ง 🙏", orderID),
		Choices: u.withStandardChoices(nil),
	})
}

func (u *ConversationUsecase) withStandardChoices(choices []chat.Choice) []chat.Choice {
	return append(choices,
		chat.NewChoice("👩‍💼 คุยกับเจ้าหน้าที่", chat.Selection{Command: chat.CmdAdmin}),
		chat.NewChoice("🏠 กลับสู่เมนู", chat.Selection{Command: chat.CmdMenu}),
	)
}

func (u *ConversationUsecase) reply(ctx context.Context, replyToken string, msgs ...chat.Message) error {
	if err := u.msgr.Reply(ctx, replyToken, msgs); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// ---------- 小物 ----------

// 設定された色集合と在庫のある色の積
func (u *ConversationUsecase) orderableColors(ctx context.Context) ([]string, error) {
	available, err := u.stock.AvailableColors(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range u.cfg.Colors {
		if _, ok := matchColor(available, c); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (u *ConversationUsecase) priceOrDefault(ctx context.Context, color string, size string) (int64, error) {
	p, err := u.stock.Price(ctx, color, size)
	if err != nil {
		return 0, err
	}
	if p <= 0 {
		p = u.cfg.DefaultPrice
	}
	return p, nil
}

func matchColor(colors []string, input string) (string, bool) {
	for _, c := range colors {
		if model.NormColor(c) == model.NormColor(input) {
			return c, true
		}
	}
	return "", false
}

func matchSize(sizes []string, input string) (string, bool) {
	for _, s := range sizes {
		if model.NormSize(s) == model.NormSize(input) {
			return s, true
		}
	}
	return "", false
}

func isMenuText(text string) bool {
	switch strings.ToLower(text) {
	case "menu", "เมนู", "hi", "hello", "start", "สวัสดี", "cancel", "ยกเลิก":
		return true
	}
	return false
}

func firstOr(ss []string, def string) string {
	if len(ss) == 0 {
		return def
	}
	return ss[0]
}
