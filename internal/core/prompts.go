package core

// prompts.go holds the Vietnamese text shown to patients and the
// instructions sent to the text generator.  Keeping them together makes
// wording changes independent of the flow code.

const (
	// GenericPersonaPrompt introduces the assistant used before any handoff.
	GenericPersonaPrompt = "Bạn là trợ lý y tế ảo thân thiện. Chỉ trả lời bằng tiếng Việt, ngắn gọn và đồng cảm. " +
		"Không đưa ra chẩn đoán chắc chắn hay kê đơn thuốc; khuyến khích người bệnh gặp bác sĩ khi cần."

	// SpecialistPersonaPrompt is formatted with the specialist's name and
	// specialty once the patient is connected.
	SpecialistPersonaPrompt = "Bạn là bác sĩ %s, chuyên khoa %s. Trả lời bằng tiếng Việt, chuyên nghiệp và dễ hiểu. " +
		"Hỏi thêm thông tin khi cần và nhắc người bệnh đến khám trực tiếp nếu triệu chứng nghiêm trọng."

	// ApologyReply replaces any reply the text generator failed to produce.
	ApologyReply = "Xin lỗi, hệ thống đang gặp sự cố. Bạn vui lòng thử lại sau ít phút."

	// SuggestSpecialistReply is formatted with specialty and specialist name.
	SuggestSpecialistReply = "Dựa trên mô tả của bạn, chuyên khoa phù hợp là %s. Bác sĩ %s hiện đang sẵn sàng tư vấn. " +
		"Bạn có muốn kết nối với bác sĩ không? (có/không)"

	// NoSpecialistReply is formatted with the unmatched specialty.
	NoSpecialistReply = "Rất tiếc, hiện chưa có bác sĩ chuyên khoa %s nào sẵn sàng. " +
		"Bạn có thể tiếp tục trò chuyện với trợ lý trong lúc chờ."

	// ConnectedReply is formatted with specialist name and specialty.
	ConnectedReply = "Bạn đã được kết nối với bác sĩ %s (chuyên khoa %s). Hãy mô tả thêm tình trạng của bạn."

	// DeclinedReply acknowledges a refused handoff.
	DeclinedReply = "Đã hiểu. Tôi sẽ tiếp tục hỗ trợ bạn, bạn cần tư vấn thêm điều gì không?"

	// ReaskReply is formatted with the pending specialist's name.
	ReaskReply = "Bạn có muốn kết nối với bác sĩ %s không? Vui lòng trả lời \"có\" hoặc \"không\"."

	// YesNoFallbackReply follows a second unclear answer.
	YesNoFallbackReply = "Vui lòng chỉ trả lời \"có\" hoặc \"không\"."

	// IntentFallbackInstruction is formatted with the patient's message.
	IntentFallbackInstruction = "Tin nhắn sau đây của người bệnh có thể hiện mong muốn được gặp hoặc kết nối với bác sĩ chuyên khoa không? " +
		"Chỉ trả lời đúng một từ: \"CÓ\" hoặc \"KHÔNG\".\n\nTin nhắn: %s"

	// SummarizationInstruction precedes the transcript handed to the
	// compactor.
	SummarizationInstruction = "Tóm tắt đoạn hội thoại y tế sau trong 2-3 câu bằng tiếng Việt. " +
		"Giữ lại triệu chứng, thời gian xuất hiện, thuốc đã dùng và các quyết định quan trọng. Chỉ trả về phần tóm tắt."
)
