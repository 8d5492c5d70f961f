package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"slack-data-bot/project/dto"
	"slack-data-bot/project/service"
)

// interactionAction はインタラクションのレート制限アクション名です
const interactionAction = "interaction"

// InteractionsHandler は Slack インタラクティブペイロード
// （block_actions / view_submission）を処理します
type InteractionsHandler struct {
	sec        *Security
	dispatcher *service.Dispatcher

	maxRequests int
	window      time.Duration
}

// NewInteractionsHandler はインタラクションハンドラーを作成します
func NewInteractionsHandler(sec *Security, dispatcher *service.Dispatcher, maxRequests int, window time.Duration) *InteractionsHandler {
	return &InteractionsHandler{
		sec:         sec,
		dispatcher:  dispatcher,
		maxRequests: maxRequests,
		window:      window,
	}
}

// ServeHTTP は Slack インタラクション受信エンドポイントです
// 約3秒の応答期限内に必ず同期応答を返します。重い処理はディスパッチャーが
// バックグラウンドへ委譲し、結果は後からエフェメラルで届きます
func (h *InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	form, userID, ok := h.sec.Authenticate(w, r)
	if !ok {
		return
	}

	if !h.sec.CheckRateLimit(w, userID, interactionAction, h.maxRequests, h.window) {
		return
	}

	interaction, err := service.ClassifyForm(form)
	if err != nil {
		if errors.Is(err, service.ErrUnhandled) {
			// 未知のペイロード種別は no-op として 200 を返す
			log.Printf("interactions: 未処理のペイロード (user=%s): %v", userID, err)
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Printf("interactions: 分類失敗 (user=%s): %v", userID, err)
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_payload"}`)
		return
	}

	h.recordInteraction(userID, interaction)

	ack, err := h.dispatcher.Dispatch(r.Context(), interaction)
	if err != nil {
		// 未登録アクション等は no-op 応答が入っているのでログのみ
		log.Printf("interactions: ディスパッチ結果 (user=%s): %v", userID, err)
	}

	switch ack.Kind {
	case service.AckViewClear:
		writeViewResponse(w, dto.SlackViewResponse{ResponseAction: "clear"})

	case service.AckViewErrors:
		writeViewResponse(w, dto.SlackViewResponse{
			ResponseAction: "errors",
			Errors:         ack.FieldErrors,
		})

	default:
		// block_actions への確認応答は空の 200
		w.WriteHeader(http.StatusOK)
	}
}

// recordInteraction はディスパッチされたインタラクションを監査ログに残します
func (h *InteractionsHandler) recordInteraction(userID string, i service.Interaction) {
	switch {
	case i.BlockAction != nil:
		h.sec.RecordAction(userID, "block_action", i.BlockAction.ActionID)
	case i.ViewSubmission != nil:
		h.sec.RecordAction(userID, "view_submission", i.ViewSubmission.CallbackID)
	}
}

// writeViewResponse は view_submission への同期応答を JSON で書き込みます
func writeViewResponse(w http.ResponseWriter, resp dto.SlackViewResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("interactions: レスポンスのエンコード失敗: %v", err)
	}
}
