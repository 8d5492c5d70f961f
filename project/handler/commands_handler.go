package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"slack-data-bot/project/dto"
	slackinfra "slack-data-bot/project/infrastructure/slack"
	"slack-data-bot/project/service"
)

// slashAction はスラッシュコマンドのレート制限アクション名です
const slashAction = "slash_command"

// CommandsHandler は Slack スラッシュコマンドを処理します
type CommandsHandler struct {
	sec        *Security
	dispatcher *service.Dispatcher

	// スラッシュコマンド専用のレート制限（インタラクションより厳しめ）
	maxRequests int
	window      time.Duration
}

// NewCommandsHandler はコマンドハンドラーを作成します
func NewCommandsHandler(sec *Security, dispatcher *service.Dispatcher, maxRequests int, window time.Duration) *CommandsHandler {
	return &CommandsHandler{
		sec:         sec,
		dispatcher:  dispatcher,
		maxRequests: maxRequests,
		window:      window,
	}
}

// ServeHTTP は Slack スラッシュコマンド受信エンドポイントです
// 検証済みリクエストの業務エラーは常に HTTP 200 のエフェメラルメッセージで
// 返します（非200を返すと Slack がユーザーに生のエラーを見せるため）
func (h *CommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	form, userID, ok := h.sec.Authenticate(w, r)
	if !ok {
		return
	}

	if !h.sec.CheckRateLimit(w, userID, slashAction, h.maxRequests, h.window) {
		return
	}

	interaction, err := service.ClassifyForm(form)
	if err != nil {
		if errors.Is(err, service.ErrUnhandled) {
			log.Printf("commands: 未処理のペイロード (user=%s): %v", userID, err)
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Printf("commands: 分類失敗 (user=%s): %v", userID, err)
		writeSlashResponse(w, dto.SlackSlashResponse{
			ResponseType: "ephemeral",
			Text:         "Sorry, something went wrong. Please try again.",
		})
		return
	}

	if cmd := interaction.SlashCommand; cmd != nil {
		h.sec.RecordAction(userID, "slash_command_"+cmd.Command, cmd.Text)
	}

	ack, err := h.dispatcher.Dispatch(r.Context(), interaction)
	if err != nil {
		// 未登録コマンド等は Ack に応答が入っているのでログのみ
		log.Printf("commands: ディスパッチ結果 (user=%s): %v", userID, err)
	}

	switch ack.Kind {
	case service.AckMenu:
		blocks := slackinfra.MainMenuBlocks(ack.Text)
		resp := dto.SlackSlashResponse{
			ResponseType: "in_channel",
			Text:         ack.Text,
			Blocks:       make([]interface{}, 0, len(blocks)),
		}
		for _, b := range blocks {
			resp.Blocks = append(resp.Blocks, b)
		}
		writeSlashResponse(w, resp)

	case service.AckEphemeralText:
		writeSlashResponse(w, dto.SlackSlashResponse{
			ResponseType: "ephemeral",
			Text:         ack.Text,
		})

	// 旧UIとの互換のため、このルートにもインタラクションペイロードが届く
	case service.AckViewClear:
		writeViewResponse(w, dto.SlackViewResponse{ResponseAction: "clear"})

	case service.AckViewErrors:
		writeViewResponse(w, dto.SlackViewResponse{
			ResponseAction: "errors",
			Errors:         ack.FieldErrors,
		})

	default:
		// メッセージなしの確認応答
		w.WriteHeader(http.StatusOK)
	}
}

// writeSlashResponse はスラッシュコマンド応答を JSON で書き込みます
func writeSlashResponse(w http.ResponseWriter, resp dto.SlackSlashResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("commands: レスポンスのエンコード失敗: %v", err)
	}
}
