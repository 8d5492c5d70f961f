package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/infrastructure/tasks"
)

// ErrUnhandled は登録されていないアクション／コールバックIDを表します
// 外部呼び出し元へはエラーではなく no-op の応答を返し、ログにのみ残します
var ErrUnhandled = errors.New("dispatcher: 未登録のインタラクションです")

// blockActionHandler は block_actions の個別ハンドラーです
// 同期の軽量バリデーションのみを行い、リモートI/Oは必ずバックグラウンド
// タスクとして提出してから即時応答を返します
type blockActionHandler func(ctx context.Context, a *BlockAction) (Ack, error)

// viewHandler は view_submission の個別ハンドラーです
type viewHandler func(ctx context.Context, v *ViewSubmission) (Ack, error)

// prefixEntry はパラメータ付きアクションID（例: get_data_sheet_<name>）の
// 前方一致ディスパッチのエントリです
type prefixEntry struct {
	prefix  string
	handler blockActionHandler
}

// Dispatcher は分類済みインタラクションをハンドラーに振り分けるコアです
// ハンドラーテーブルは起動時に構築され、以後は読み取り専用です
type Dispatcher struct {
	sp StoragePort
	cp SlackPort
	tp TaskPort
	n  *Notifier
	ar domain.AuditRepository // nil なら履歴表示無効

	exactActions  map[string]blockActionHandler
	prefixActions []prefixEntry // 最長一致優先。同長は先着順
	views         map[string]viewHandler
}

// NewDispatcher はディスパッチャーを初期化し、アクションテーブルを登録します
func NewDispatcher(sp StoragePort, cp SlackPort, tp TaskPort, n *Notifier, ar domain.AuditRepository) *Dispatcher {
	d := &Dispatcher{
		sp:           sp,
		cp:           cp,
		tp:           tp,
		n:            n,
		ar:           ar,
		exactActions: make(map[string]blockActionHandler),
		views:        make(map[string]viewHandler),
	}

	// メニューアクション（完全一致）
	d.registerAction("list_sheets_menu", d.handleListAction(domain.KindSheet))
	d.registerAction("list_excel_menu", d.handleListAction(domain.KindExcel))
	d.registerAction("list_csv_menu", d.handleListAction(domain.KindCSV))
	d.registerAction("create_sheet_menu", d.handleCreateMenuAction(domain.KindSheet))
	d.registerAction("create_excel_menu", d.handleCreateMenuAction(domain.KindExcel))
	d.registerAction("create_csv_menu", d.handleCreateMenuAction(domain.KindCSV))
	d.registerAction("refresh_data", d.handleRefreshAction)
	d.registerAction("open_update_modal", d.handleOpenUpdateModalAction)

	// リソースID付きアクション（前方一致）。既存UIのペイロードとの
	// ワイヤ互換のため、IDはアクションID末尾に埋め込まれたままです
	d.registerPrefixAction("get_data_sheet_", d.handleGetDataAction(domain.KindSheet))
	d.registerPrefixAction("get_data_excel_", d.handleGetDataAction(domain.KindExcel))
	d.registerPrefixAction("get_data_csv_", d.handleGetDataAction(domain.KindCSV))

	// モーダル送信
	d.registerView("write_data_modal", d.handleWriteDataSubmission)
	// 旧UIが送る callback_id も同じハンドラーに束ねる
	d.registerView("write_sheet_data_modal", d.handleWriteDataSubmission)
	d.registerView("write_excel_data_modal", d.handleWriteDataSubmission)
	d.registerView("write_csv_data_modal", d.handleWriteDataSubmission)
	d.registerView("create_sheet_modal", d.handleCreateSubmission(domain.KindSheet))
	d.registerView("create_excel_modal", d.handleCreateSubmission(domain.KindExcel))
	d.registerView("create_csv_modal", d.handleCreateSubmission(domain.KindCSV))

	return d
}

// registerAction は完全一致アクションを登録します
func (d *Dispatcher) registerAction(actionID string, h blockActionHandler) {
	d.exactActions[actionID] = h
}

// registerPrefixAction は前方一致アクションを登録します
// テーブルは最長一致優先で並び、同じ長さなら先に登録した方が勝ちます
func (d *Dispatcher) registerPrefixAction(prefix string, h blockActionHandler) {
	d.prefixActions = append(d.prefixActions, prefixEntry{prefix: prefix, handler: h})
	sort.SliceStable(d.prefixActions, func(i, j int) bool {
		return len(d.prefixActions[i].prefix) > len(d.prefixActions[j].prefix)
	})
}

// registerView は view_submission のコールバックを登録します
func (d *Dispatcher) registerView(callbackID string, h viewHandler) {
	d.views[callbackID] = h
}

// Dispatch は分類済みインタラクションを処理し、即時応答を返します
// この同期パスはプラットフォームの応答期限（約3秒）内に必ず返ります。
// リモートI/Oはすべてバックグラウンドタスクへ委譲されます
func (d *Dispatcher) Dispatch(ctx context.Context, i Interaction) (Ack, error) {
	if err := i.Validate(); err != nil {
		return ackOK(), err
	}

	switch {
	case i.SlashCommand != nil:
		return d.dispatchSlash(ctx, i.SlashCommand)
	case i.BlockAction != nil:
		return d.dispatchBlockAction(ctx, i.BlockAction)
	default:
		return d.dispatchView(ctx, i.ViewSubmission)
	}
}

// dispatchSlash はスラッシュコマンドを処理します
func (d *Dispatcher) dispatchSlash(ctx context.Context, c *SlashCommand) (Ack, error) {
	switch c.Command {
	case "/start":
		return ackMenu("Welcome to Slack Data Manager Bot!"), nil
	case "/audit":
		return d.handleAuditCommand(ctx, c)
	default:
		log.Printf("dispatcher: 不明なコマンド (command=%s, user=%s)", c.Command, c.UserID)
		return ackText(fmt.Sprintf("Unknown command: %s. Use /start to see available options.", c.Command)), nil
	}
}

// auditHistoryLimit は /audit で表示する履歴の最大件数です
const auditHistoryLimit = 10

// handleAuditCommand は /audit を処理します
// 自分の直近の操作履歴を監査ログから取得してエフェメラルで届けます
func (d *Dispatcher) handleAuditCommand(ctx context.Context, c *SlashCommand) (Ack, error) {
	if d.ar == nil {
		return ackText("Audit log is not enabled."), nil
	}

	channelID := c.ChannelID
	userID := c.UserID
	err := d.tp.Submit("audit_history", userID, func(taskCtx context.Context) domain.Outcome {
		events, err := d.ar.ListByUser(taskCtx, userID, auditHistoryLimit)
		if err != nil {
			return domain.FailureOutcome(domain.ClassifyRemoteError(err),
				fmt.Sprintf("Error loading your activity history: %v", err))
		}
		if len(events) == 0 {
			return domain.SuccessOutcome("🗒 No recorded activity yet.", "")
		}
		if err := d.cp.PostEphemeralText(taskCtx, channelID, userID, formatAuditEvents(events)); err != nil {
			return domain.FailureOutcome(domain.ErrorKindGeneric,
				fmt.Sprintf("Error loading your activity history: %v", err))
		}
		// 履歴は直接投稿済みのため追加通知なし
		return domain.SuccessOutcome("", "")
	})
	if err != nil {
		if errors.Is(err, tasks.ErrBusy) {
			return ackText("The bot is busy right now. Please try again in a moment."), nil
		}
		return ackText("Sorry, something went wrong. Please try again."), err
	}

	return ackOK(), nil
}

// formatAuditEvents は監査イベントの一覧を表示用テキストに整形します
func formatAuditEvents(events []*domain.AuditEvent) string {
	var b strings.Builder
	b.WriteString("🗒 Your recent activity:")
	for _, e := range events {
		fmt.Fprintf(&b, "\n• %s  %s",
			time.Unix(e.CreatedAt, 0).UTC().Format("2006-01-02 15:04"), e.Action)
		if e.Detail != "" {
			fmt.Fprintf(&b, " (%s)", e.Detail)
		}
	}
	return b.String()
}

// dispatchBlockAction はボタン押下を登録テーブルで振り分けます
// 完全一致が優先され、なければ前方一致テーブルを最長一致で照合します
func (d *Dispatcher) dispatchBlockAction(ctx context.Context, a *BlockAction) (Ack, error) {
	if h, ok := d.exactActions[a.ActionID]; ok {
		return h(ctx, a)
	}

	for _, e := range d.prefixActions {
		if strings.HasPrefix(a.ActionID, e.prefix) {
			return e.handler(ctx, a)
		}
	}

	// 未登録アクションは no-op 応答（エラーとしてユーザーに見せない）
	log.Printf("dispatcher: 未処理のアクション (action_id=%s, user=%s)", a.ActionID, a.UserID)
	return ackOK(), fmt.Errorf("%w (action_id=%s)", ErrUnhandled, a.ActionID)
}

// dispatchView はモーダル送信を登録テーブルで振り分けます
func (d *Dispatcher) dispatchView(ctx context.Context, v *ViewSubmission) (Ack, error) {
	if h, ok := d.views[v.CallbackID]; ok {
		return h(ctx, v)
	}

	log.Printf("dispatcher: 未処理のコールバック (callback_id=%s, user=%s)", v.CallbackID, v.UserID)
	return ackOK(), fmt.Errorf("%w (callback_id=%s)", ErrUnhandled, v.CallbackID)
}

// ===== block_actions ハンドラー =====

// handleListAction は一覧表示ボタンのハンドラーを作ります
// Drive の一覧取得は遅いためバックグラウンドで実行し、結果は
// エフェメラルメッセージで届けます
func (d *Dispatcher) handleListAction(kind domain.ResourceKind) blockActionHandler {
	return func(ctx context.Context, a *BlockAction) (Ack, error) {
		channelID := a.ChannelID
		userID := a.UserID

		err := d.tp.Submit(fmt.Sprintf("list_%s", kind), userID, func(taskCtx context.Context) domain.Outcome {
			items, err := d.sp.ListResources(taskCtx, kind)
			if err != nil {
				return domain.FailureOutcome(domain.ClassifyRemoteError(err),
					fmt.Sprintf("Error listing %s files: %v", kind, err))
			}
			if len(items) == 0 {
				return domain.SuccessOutcome(fmt.Sprintf("📝 No %s files found in your Drive folder.", kind), "")
			}
			if err := d.cp.PostResourceList(taskCtx, channelID, userID, kind, items); err != nil {
				return domain.FailureOutcome(domain.ErrorKindGeneric,
					fmt.Sprintf("Error listing %s files: %v", kind, err))
			}
			// 一覧は直接投稿済みのため追加通知なし
			return domain.SuccessOutcome("", "")
		})
		if err != nil {
			return d.rejectSubmission(a, err)
		}

		return ackOK(), nil
	}
}

// handleCreateMenuAction はファイル作成ボタンのハンドラーを作ります
// trigger_id は約3秒しか有効でないため、モーダルオープンも即座に
// バックグラウンドへ提出します
func (d *Dispatcher) handleCreateMenuAction(kind domain.ResourceKind) blockActionHandler {
	return func(ctx context.Context, a *BlockAction) (Ack, error) {
		if a.TriggerID == "" {
			log.Printf("dispatcher: trigger_id がありません (action=create_%s_menu, user=%s)", kind, a.UserID)
			return ackOK(), nil
		}

		triggerID := a.TriggerID
		err := d.tp.Submit(fmt.Sprintf("open_create_modal_%s", kind), a.UserID, func(taskCtx context.Context) domain.Outcome {
			if err := d.cp.OpenCreateModal(taskCtx, triggerID, kind); err != nil {
				return domain.FailureOutcome(domain.ErrorKindGeneric,
					fmt.Sprintf("Error opening the create dialog: %v", err))
			}
			return domain.SuccessOutcome("", "")
		})
		if err != nil {
			return d.rejectSubmission(a, err)
		}

		return ackOK(), nil
	}
}

// handleGetDataAction はリソースID付きデータ取得ボタンのハンドラーを作ります
// リソースIDはボタンの value に入っています
func (d *Dispatcher) handleGetDataAction(kind domain.ResourceKind) blockActionHandler {
	return func(ctx context.Context, a *BlockAction) (Ack, error) {
		if a.Value == "" {
			log.Printf("dispatcher: アクション value にリソースIDがありません (action_id=%s)", a.ActionID)
			return ackOK(), nil
		}

		ref := domain.ResourceRef{Kind: kind, ID: a.Value}
		if err := d.scheduleFetch(a.ChannelID, a.UserID, ref); err != nil {
			return d.rejectSubmission(a, err)
		}
		return ackOK(), nil
	}
}

// handleRefreshAction は Refresh ボタンを処理します
// ボタン value の記述子 {source, params} をデコードし、
// 種別ごとの取得ロジックへ再ディスパッチします
func (d *Dispatcher) handleRefreshAction(ctx context.Context, a *BlockAction) (Ack, error) {
	ref, err := domain.DecodeDescriptor(a.Value)
	if err != nil {
		log.Printf("dispatcher: refresh 記述子のデコード失敗 (user=%s): %v", a.UserID, err)
		return ackOK(), nil
	}

	if err := d.scheduleFetch(a.ChannelID, a.UserID, ref); err != nil {
		return d.rejectSubmission(a, err)
	}
	return ackOK(), nil
}

// handleOpenUpdateModalAction はセル更新モーダルを開きます
// 対象リソースの記述子は private_metadata としてモーダルに埋め込まれ、
// 送信ハンドラーが宛先を再導出せずに済むようにします
func (d *Dispatcher) handleOpenUpdateModalAction(ctx context.Context, a *BlockAction) (Ack, error) {
	if a.TriggerID == "" {
		log.Printf("dispatcher: trigger_id がありません (action=open_update_modal, user=%s)", a.UserID)
		return ackOK(), nil
	}

	ref, err := domain.DecodeDescriptor(a.Value)
	if err != nil {
		log.Printf("dispatcher: update 記述子のデコード失敗 (user=%s): %v", a.UserID, err)
		return ackOK(), nil
	}

	triggerID := a.TriggerID
	err = d.tp.Submit("open_update_modal", a.UserID, func(taskCtx context.Context) domain.Outcome {
		if err := d.cp.OpenUpdateModal(taskCtx, triggerID, ref); err != nil {
			return domain.FailureOutcome(domain.ErrorKindGeneric,
				fmt.Sprintf("Error opening the update dialog: %v", err))
		}
		return domain.SuccessOutcome("", "")
	})
	if err != nil {
		return d.rejectSubmission(a, err)
	}

	return ackOK(), nil
}

// scheduleFetch はリソース読み出しタスクを提出します
func (d *Dispatcher) scheduleFetch(channelID, userID string, ref domain.ResourceRef) error {
	return d.tp.Submit(fmt.Sprintf("fetch_%s", ref.Kind), userID, func(taskCtx context.Context) domain.Outcome {
		rows, err := d.sp.ReadResource(taskCtx, ref, "")
		if err != nil {
			return domain.FailureOutcome(domain.ClassifyRemoteError(err),
				fmt.Sprintf("Error getting data from %s: %v", ref.Kind, err))
		}
		if len(rows) == 0 {
			return domain.SuccessOutcome(fmt.Sprintf("📝 No data found in %s.", ref.Kind), "")
		}
		if err := d.cp.PostResourceData(taskCtx, channelID, userID, ref, rows); err != nil {
			return domain.FailureOutcome(domain.ErrorKindGeneric,
				fmt.Sprintf("Error getting data from %s: %v", ref.Kind, err))
		}
		return domain.SuccessOutcome("", "")
	})
}

// rejectSubmission はランナーが満杯でタスクを受けられなかった場合の処理です
// 無制限に積まずに即時拒否し、その旨をエフェメラルで知らせます
// 通知の投稿はリモートI/Oのため、同期応答を塞がないようリクエストパス外で配送します
func (d *Dispatcher) rejectSubmission(a *BlockAction, err error) (Ack, error) {
	if errors.Is(err, tasks.ErrBusy) {
		log.Printf("dispatcher: ランナー満杯のため拒否 (action_id=%s, user=%s)", a.ActionID, a.UserID)
		userID := a.UserID
		go d.n.Notify(context.Background(), userID, domain.FailureOutcome(domain.ErrorKindGeneric,
			"The bot is busy right now. Please try again in a moment."))
		return ackOK(), nil
	}
	return ackOK(), err
}

// ===== view_submission ハンドラー =====

// handleWriteDataSubmission はセル更新モーダルの送信を処理します
// 行・列・値の軽量バリデーションは同期で行い、エラーはフォームの
// フィールド単位で同期応答に載せます（後からの通知では届けません）
func (d *Dispatcher) handleWriteDataSubmission(ctx context.Context, v *ViewSubmission) (Ack, error) {
	rowInput := v.State.InputValue("row_block", "row_input")
	colInput := v.State.InputValue("col_block", "col_input")
	value := v.State.InputValue("value_block", "value_input")

	if rowInput == "" || colInput == "" || value == "" {
		return ackViewErrors(map[string]string{
			"row_block": "All fields are required",
		}), nil
	}

	row, err := domain.ParseRow(rowInput)
	if err != nil {
		return ackViewErrors(map[string]string{
			"row_block": "Row must be a positive number",
		}), nil
	}

	col, err := domain.NormalizeColumn(colInput)
	if err != nil {
		return ackViewErrors(map[string]string{
			"col_block": "Column must be a number (1,2,3...) or letter (A,B,C...)",
		}), nil
	}

	// 宛先リソースは private_metadata の記述子から復元する
	ref, err := domain.DecodeDescriptor(v.PrivateMetadata)
	if err != nil {
		log.Printf("dispatcher: private_metadata のデコード失敗 (user=%s): %v", v.UserID, err)
		return ackViewErrors(map[string]string{
			"row_block": "Configuration error: target file not found",
		}), nil
	}

	userID := v.UserID
	err = d.tp.Submit(fmt.Sprintf("write_cell_%s", ref.Kind), userID, func(taskCtx context.Context) domain.Outcome {
		if err := d.sp.WriteCell(taskCtx, ref, row, col, value); err != nil {
			return domain.FailureOutcome(domain.ClassifyRemoteError(err),
				fmt.Sprintf("Error updating cell %s%d: %v", col, row, err))
		}
		return domain.SuccessOutcome(
			fmt.Sprintf("Successfully updated cell %s%d with value: '%s'", col, row, value), "")
	})
	if err != nil {
		if errors.Is(err, tasks.ErrBusy) {
			return ackViewErrors(map[string]string{
				"row_block": "The bot is busy right now. Please try again in a moment.",
			}), nil
		}
		return ackViewClear(), err
	}

	// モーダルを閉じる。結果は後からエフェメラルで届く
	return ackViewClear(), nil
}

// handleCreateSubmission はファイル作成モーダルの送信ハンドラーを作ります
func (d *Dispatcher) handleCreateSubmission(kind domain.ResourceKind) viewHandler {
	return func(ctx context.Context, v *ViewSubmission) (Ack, error) {
		title := v.State.InputValue("title_block", "title_input")
		if strings.TrimSpace(title) == "" {
			return ackViewErrors(map[string]string{
				"title_block": "File name is required",
			}), nil
		}

		template := v.State.SelectedValue("template_block", "template_input")
		rows := TemplateRows(template)

		userID := v.UserID
		err := d.tp.Submit(fmt.Sprintf("create_%s", kind), userID, func(taskCtx context.Context) domain.Outcome {
			created, err := d.sp.CreateResource(taskCtx, kind, title, rows)
			if err != nil {
				return domain.FailureOutcome(domain.ClassifyRemoteError(err),
					fmt.Sprintf("Error creating %s file '%s': %v", kind, title, err))
			}

			msg := fmt.Sprintf("Successfully created new %s file: '%s'", kind, created.Name)
			details := ""
			if created.URL != "" {
				details = fmt.Sprintf("🔗 <%s|Open in Google Drive>", created.URL)
			}
			return domain.SuccessOutcome(msg, details)
		})
		if err != nil {
			if errors.Is(err, tasks.ErrBusy) {
				return ackViewErrors(map[string]string{
					"title_block": "The bot is busy right now. Please try again in a moment.",
				}), nil
			}
			return ackViewClear(), err
		}

		return ackViewClear(), nil
	}
}
