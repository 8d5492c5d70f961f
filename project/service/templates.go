package service

// TemplateRows は作成モーダルで選択されたテンプレートの初期データを返します
// 未知のテンプレート名は空データ扱いです
func TemplateRows(template string) [][]string {
	switch template {
	case "task_tracker":
		return [][]string{
			{"Task", "Status", "Assignee", "Due Date", "Priority"},
			{"", "Not Started", "", "", "Medium"},
		}
	case "sales_report":
		return [][]string{
			{"Product", "Sales", "Revenue", "Date", "Region"},
			{"", "0", "$0", "", ""},
		}
	case "inventory":
		return [][]string{
			{"Item", "Quantity", "Price", "Category", "Last Updated"},
			{"", "0", "$0", "", ""},
		}
	default:
		// "empty" および未知のテンプレート
		return nil
	}
}
