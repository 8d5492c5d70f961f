package slack

import (
	"fmt"
	"strings"

	"slack-data-bot/project/domain"

	"github.com/slack-go/slack"
)

// Block Kit メッセージに載せるデータ行の上限
// Slack のメッセージは50ブロックまでのため、先頭のみを表示します
const maxDataRows = 10

// kindLabel は種別ごとの表示名です
func kindLabel(kind domain.ResourceKind) string {
	switch kind {
	case domain.KindSheet:
		return "Google Sheets"
	case domain.KindExcel:
		return "Excel Files"
	case domain.KindCSV:
		return "CSV Files"
	default:
		return string(kind)
	}
}

// MainMenuBlocks は /start 応答のメインメニューを組み立てます
// 各セクションのボタンが block_actions のエントリーポイントになります
func MainMenuBlocks(greeting string) []slack.Block {
	menuButton := func(text, actionID string) *slack.Accessory {
		return slack.NewAccessory(slack.NewButtonBlockElement(
			actionID, actionID,
			slack.NewTextBlockObject(slack.PlainTextType, text, true, false),
		))
	}
	menuSection := func(text string, accessory *slack.Accessory) *slack.SectionBlock {
		return slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil, accessory,
		)
	}

	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%s*\nWhat would you like to do?", greeting), false, false),
			nil, nil,
		),
		slack.NewDividerBlock(),
		menuSection("📊 *Google Sheets*\nList the spreadsheets in your Drive folder",
			menuButton("List Sheets", "list_sheets_menu")),
		menuSection("➕ *New Spreadsheet*\nCreate a new Google Sheets file",
			menuButton("Create Sheet", "create_sheet_menu")),
		menuSection("📊 *Excel Files*\nList the .xlsx workbooks in your Drive folder",
			menuButton("List Excel", "list_excel_menu")),
		menuSection("➕ *New Excel File*\nCreate a new .xlsx workbook",
			menuButton("Create Excel", "create_excel_menu")),
		menuSection("📋 *CSV Files*\nList the CSV files in your Drive folder",
			menuButton("List CSV", "list_csv_menu")),
		menuSection("➕ *New CSV File*\nCreate a new CSV file",
			menuButton("Create CSV", "create_csv_menu")),
	}
}

// BuildResourceListBlocks はリソース一覧メッセージを組み立てます
// 各行に Get Data ボタンが付き、action_id にリソースIDが埋め込まれます
func BuildResourceListBlocks(kind domain.ResourceKind, items []domain.ResourceInfo) []slack.Block {
	header := "📊 Available " + kindLabel(kind)
	if kind == domain.KindCSV {
		header = "📋 Available " + kindLabel(kind)
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, header, true, false),
		),
		slack.NewDividerBlock(),
	}

	for _, item := range items {
		// 更新日時は日付部分だけ見せる
		modified := item.Modified
		if idx := strings.IndexByte(modified, 'T'); idx > 0 {
			modified = modified[:idx]
		}

		text := fmt.Sprintf("*%s*\nLast modified: %s", item.Name, modified)
		if item.URL != "" {
			text = fmt.Sprintf("*<%s|%s>*\nLast modified: %s", item.URL, item.Name, modified)
		}

		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil,
			slack.NewAccessory(slack.NewButtonBlockElement(
				fmt.Sprintf("get_data_%s_%s", kind, item.ID),
				item.ID,
				slack.NewTextBlockObject(slack.PlainTextType, "Get Data", true, false),
			)),
		))
	}

	return blocks
}

// BuildDataBlocks はリソースのデータ表示メッセージを組み立てます
// 先頭行をヘッダー扱いにし、末尾に Refresh / Update Cell ボタンを付けます
// ボタンの value には宛先の記述子 JSON が入ります
func BuildDataBlocks(ref domain.ResourceRef, rows [][]string) ([]slack.Block, error) {
	descriptor, err := ref.EncodeDescriptor()
	if err != nil {
		return nil, err
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType,
				fmt.Sprintf("📊 Data from %s", kindLabel(ref.Kind)), true, false),
		),
		slack.NewDividerBlock(),
	}

	if len(rows) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%s*", strings.Join(rows[0], " | ")), false, false),
			nil, nil,
		))
	}

	body := rows
	if len(body) > 0 {
		body = body[1:]
	}
	truncated := false
	if len(body) > maxDataRows {
		body = body[:maxDataRows]
		truncated = true
	}

	for _, row := range body {
		line := strings.Join(row, " | ")
		if line == "" {
			line = " "
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.PlainTextType, line, true, false),
			nil, nil,
		))
	}

	if truncated {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("_Showing first %d rows_", maxDataRows), false, false),
			nil, nil,
		))
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewActionBlock("data_actions",
			slack.NewButtonBlockElement(
				"refresh_data", descriptor,
				slack.NewTextBlockObject(slack.PlainTextType, "🔄 Refresh", true, false),
			),
			slack.NewButtonBlockElement(
				"open_update_modal", descriptor,
				slack.NewTextBlockObject(slack.PlainTextType, "✏️ Update Cell", true, false),
			),
		),
	)

	return blocks, nil
}

// BuildCreateModal はファイル作成モーダルを組み立てます
func BuildCreateModal(kind domain.ResourceKind) slack.ModalViewRequest {
	var callbackID, title string
	switch kind {
	case domain.KindExcel:
		callbackID = "create_excel_modal"
		title = "Create Excel File"
	case domain.KindCSV:
		callbackID = "create_csv_modal"
		title = "Create CSV File"
	default:
		callbackID = "create_sheet_modal"
		title = "Create Spreadsheet"
	}

	templateSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Choose a template", true, false),
		"template_input",
		slack.NewOptionBlockObject("empty",
			slack.NewTextBlockObject(slack.PlainTextType, "Empty", true, false), nil),
		slack.NewOptionBlockObject("task_tracker",
			slack.NewTextBlockObject(slack.PlainTextType, "Task Tracker", true, false), nil),
		slack.NewOptionBlockObject("sales_report",
			slack.NewTextBlockObject(slack.PlainTextType, "Sales Report", true, false), nil),
		slack.NewOptionBlockObject("inventory",
			slack.NewTextBlockObject(slack.PlainTextType, "Inventory", true, false), nil),
	)

	templateBlock := slack.NewInputBlock(
		"template_block",
		slack.NewTextBlockObject(slack.PlainTextType, "Template", true, false),
		nil,
		templateSelect,
	)
	templateBlock.Optional = true

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: callbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, title, true, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Create", true, false),
		Close:      slack.NewTextBlockObject(slack.PlainTextType, "Cancel", true, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(
					"title_block",
					slack.NewTextBlockObject(slack.PlainTextType, "File Name", true, false),
					nil,
					slack.NewPlainTextInputBlockElement(
						slack.NewTextBlockObject(slack.PlainTextType, "Enter a file name", true, false),
						"title_input",
					),
				),
				templateBlock,
			},
		},
	}
}

// BuildUpdateModal はセル更新モーダルを組み立てます
// 宛先リソースの記述子は private_metadata に保持します
func BuildUpdateModal(ref domain.ResourceRef) (slack.ModalViewRequest, error) {
	descriptor, err := ref.EncodeDescriptor()
	if err != nil {
		return slack.ModalViewRequest{}, err
	}

	input := func(blockID, label, placeholder, actionID string) *slack.InputBlock {
		return slack.NewInputBlock(
			blockID,
			slack.NewTextBlockObject(slack.PlainTextType, label, true, false),
			nil,
			slack.NewPlainTextInputBlockElement(
				slack.NewTextBlockObject(slack.PlainTextType, placeholder, true, false),
				actionID,
			),
		)
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      "write_data_modal",
		PrivateMetadata: descriptor,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Update Cell", true, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Update", true, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", true, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				input("row_block", "Row", "e.g. 2", "row_input"),
				input("col_block", "Column", "e.g. A or 1", "col_input"),
				input("value_block", "New Value", "Enter the new cell value", "value_input"),
			},
		},
	}, nil
}
