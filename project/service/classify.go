package service

import (
	"encoding/json"
	"fmt"
	"net/url"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/dto"
)

// インタラクションペイロードの type 判別子
const (
	payloadTypeBlockActions   = "block_actions"
	payloadTypeViewSubmission = "view_submission"
)

// ClassifyForm はデコード済みフォームを正規化された Interaction に分類します
// "payload" フィールドがあればインタラクティブペイロードとして内側の type で
// 判別し、なければスラッシュコマンドとして扱います
// 判別子が未知の形のペイロードは domain.ErrInvalid で拒否します（推測しません）
func ClassifyForm(form url.Values) (Interaction, error) {
	if payload := form.Get("payload"); payload != "" {
		return classifyPayload(payload)
	}

	var cmd dto.SlackCommandRequest
	cmd.Token = form.Get("token")
	cmd.TeamID = form.Get("team_id")
	cmd.ChannelID = form.Get("channel_id")
	cmd.ChannelName = form.Get("channel_name")
	cmd.UserID = form.Get("user_id")
	cmd.UserName = form.Get("user_name")
	cmd.Command = form.Get("command")
	cmd.Text = form.Get("text")
	cmd.ResponseURL = form.Get("response_url")
	cmd.TriggerID = form.Get("trigger_id")

	if cmd.Command == "" {
		return Interaction{}, fmt.Errorf("%w: コマンドでもインタラクションでもないリクエストです", domain.ErrInvalid)
	}

	return Interaction{
		SlashCommand: &SlashCommand{
			Command:   cmd.Command,
			Text:      cmd.Text,
			UserID:    cmd.UserID,
			ChannelID: cmd.ChannelID,
			TriggerID: cmd.TriggerID,
		},
	}, nil
}

// classifyPayload はインタラクティブペイロード（JSON）を分類します
func classifyPayload(payload string) (Interaction, error) {
	var p dto.SlackInteractionPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Interaction{}, fmt.Errorf("%w: ペイロードのパースに失敗しました: %v", domain.ErrInvalid, err)
	}

	switch p.Type {
	case payloadTypeBlockActions:
		if len(p.Actions) == 0 {
			return Interaction{}, fmt.Errorf("%w: block_actions にアクションが含まれていません", domain.ErrInvalid)
		}
		// 処理対象は先頭のアクションのみ
		action := p.Actions[0]
		return Interaction{
			BlockAction: &BlockAction{
				ActionID:  action.ActionID,
				Value:     action.Value,
				TriggerID: p.TriggerID,
				UserID:    p.User.ID,
				ChannelID: p.Channel.ID,
			},
		}, nil

	case payloadTypeViewSubmission:
		if p.View == nil {
			return Interaction{}, fmt.Errorf("%w: view_submission に view が含まれていません", domain.ErrInvalid)
		}
		return Interaction{
			ViewSubmission: &ViewSubmission{
				CallbackID:      p.View.CallbackID,
				PrivateMetadata: p.View.PrivateMetadata,
				State:           p.View.State,
				UserID:          p.User.ID,
			},
		}, nil

	default:
		// 未知の種別は no-op として応答する（ハードエラーにしない）
		return Interaction{}, fmt.Errorf("%w (type=%s)", ErrUnhandled, p.Type)
	}
}
