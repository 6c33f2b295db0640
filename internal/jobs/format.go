package jobs

import (
	"fmt"
	"strings"
)

// NoMatchMessage is shown instead of an empty listing.
const NoMatchMessage = "😔 Rất tiếc, hiện tại mình không có vị trí nào phù hợp với yêu cầu của bạn.\n\n" +
	"Bạn có thể để lại thông tin (tên, email, số điện thoại, link profile) " +
	"để bộ phận tuyển dụng của chúng tôi phản hồi lại nếu có job phù hợp nhé! 🙏"

const defaultSalary = "Thỏa thuận"

// FormatList renders the postings as the numbered listing shown to candidates.
func FormatList(p *Postings) string {
	if p.Len() == 0 {
		return NoMatchMessage
	}

	var b strings.Builder
	b.WriteString("🎯 **Các vị trí tuyển dụng phù hợp:**\n\n")

	for i, posting := range p.Items {
		salary := posting.Salary
		if strings.TrimSpace(salary) == "" {
			salary = defaultSalary
		}

		fmt.Fprintf(&b, "**%d. %s**\n", i+1, posting.Title)
		fmt.Fprintf(&b, "   - 📍 Địa điểm: %s\n", posting.Location)
		fmt.Fprintf(&b, "   - 💼 Loại hình: %s\n", posting.EmploymentType)
		fmt.Fprintf(&b, "   - 💰 Mức lương: %s\n", salary)
		fmt.Fprintf(&b, "   - 📝 Mô tả: %s\n", posting.Description)

		if len(posting.Skills) > 0 {
			fmt.Fprintf(&b, "   - 🔧 Kỹ năng: %s\n", strings.Join(posting.Skills, ", "))
		}
		if posting.Contact != "" {
			fmt.Fprintf(&b, "   - 📧 Liên hệ: %s\n", posting.Contact)
		}

		b.WriteString("\n")
	}

	b.WriteString("\n💡 Bạn có quan tâm đến vị trí nào không? Hãy để lại thông tin để chúng tôi liên hệ với bạn nhé!")

	return b.String()
}
