package dto

import "encoding/json"

// SlackInteractionPayload は Slack インタラクティブペイロード全体を表します
// form の "payload" フィールドに JSON エンコードされて届きます
// type フィールドの値により block_actions / view_submission を判別します
type SlackInteractionPayload struct {
	Type      string           `json:"type"` // "block_actions", "view_submission"
	TriggerID string           `json:"trigger_id"`
	User      SlackUser        `json:"user"`
	Channel   SlackChannel     `json:"channel,omitempty"`
	Actions   []SlackAction    `json:"actions,omitempty"` // block_actions のみ
	View      *SlackView       `json:"view,omitempty"`    // view_submission のみ
	Team      SlackInterTeam   `json:"team,omitempty"`
	Container *SlackContainer  `json:"container,omitempty"`
	RawState  *json.RawMessage `json:"state,omitempty"`
}

// SlackUser はペイロードに含まれるユーザー情報です
type SlackUser struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// SlackChannel はペイロードに含まれるチャンネル情報です
type SlackChannel struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SlackInterTeam はペイロードに含まれるワークスペース情報です
type SlackInterTeam struct {
	ID     string `json:"id"`
	Domain string `json:"domain,omitempty"`
}

// SlackContainer はメッセージコンテナ情報です（応答メッセージの特定に使用）
type SlackContainer struct {
	Type      string `json:"type,omitempty"`
	MessageTS string `json:"message_ts,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// SlackAction は block_actions の個々のアクション（ボタン押下など）です
type SlackAction struct {
	ActionID string `json:"action_id"`
	BlockID  string `json:"block_id,omitempty"`
	Value    string `json:"value,omitempty"`
	Type     string `json:"type,omitempty"`
}

// SlackView は view_submission のモーダルビューです
type SlackView struct {
	ID              string         `json:"id,omitempty"`
	CallbackID      string         `json:"callback_id"`
	PrivateMetadata string         `json:"private_metadata,omitempty"`
	State           SlackViewState `json:"state"`
}

// SlackViewState はモーダルの入力値です
// values[block_id][action_id] の2段マップ構造になっています
type SlackViewState struct {
	Values map[string]map[string]SlackViewValue `json:"values"`
}

// SlackViewValue はモーダル入力要素の値です
type SlackViewValue struct {
	Type           string           `json:"type,omitempty"`
	Value          string           `json:"value,omitempty"`
	SelectedOption *SlackViewOption `json:"selected_option,omitempty"`
}

// SlackViewOption は select 要素の選択値です
type SlackViewOption struct {
	Value string `json:"value"`
}

// InputValue は block_id / action_id で指定された plain_text 入力の値を返します
// 存在しない場合は空文字列です
func (v SlackViewState) InputValue(blockID, actionID string) string {
	block, ok := v.Values[blockID]
	if !ok {
		return ""
	}
	return block[actionID].Value
}

// SelectedValue は block_id / action_id で指定された select の選択値を返します
func (v SlackViewState) SelectedValue(blockID, actionID string) string {
	block, ok := v.Values[blockID]
	if !ok {
		return ""
	}
	if opt := block[actionID].SelectedOption; opt != nil {
		return opt.Value
	}
	return ""
}

// SlackViewResponse は view_submission への同期レスポンスです
// response_action: "clear" でモーダルを閉じ、"errors" でフィールド単位の
// バリデーションエラーをインライン表示します
type SlackViewResponse struct {
	ResponseAction string            `json:"response_action"`
	Errors         map[string]string `json:"errors,omitempty"` // block_id -> エラーメッセージ
}
