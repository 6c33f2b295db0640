package orchestrator

import (
	"fmt"
	"strings"
)

// Canned replies for the paths where no tool output is available. Tool
// failures are logged for the operator and apologized for to the candidate.
const (
	MessageApology = "😥 Xin lỗi, hệ thống đang gặp chút sự cố. Bạn vui lòng thử lại sau ít phút nhé!"

	MessageSearchFailed = "😥 Xin lỗi, hiện tại mình chưa thể tra cứu thông tin này. " +
		"Bạn vui lòng thử lại sau, hoặc để lại câu hỏi để bộ phận tuyển dụng giải đáp nhé!"

	MessageOffTopic = "🙏 Mình là trợ lý tuyển dụng nên chỉ hỗ trợ được các câu hỏi về việc làm và ứng tuyển thôi. " +
		"Bạn có muốn tìm hiểu về các vị trí đang tuyển dụng không?"

	MessageRecordFailed = "😥 Xin lỗi, mình chưa lưu được thông tin của bạn. Bạn vui lòng thử lại sau ít phút nhé!"
)

// missingContactMessage politely asks for the required contact fields the
// candidate has not provided yet.
func missingContactMessage(fields []string) string {
	return fmt.Sprintf("Để bộ phận tuyển dụng liên hệ được với bạn, bạn vui lòng cho mình xin %s nhé! 🙏",
		strings.Join(fields, " và "))
}

// clarifyJobMessage asks which of several matching positions the candidate
// means before any record is written.
func clarifyJobMessage(titles []string) string {
	var b strings.Builder
	b.WriteString("Mình tìm thấy vài vị trí giống với mô tả của bạn. Bạn đang quan tâm đến vị trí nào dưới đây nhỉ?\n")
	for _, title := range titles {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	return strings.TrimRight(b.String(), "\n")
}
