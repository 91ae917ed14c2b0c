package usecase

import "fmt"

// Foydalanuvchiga yuboriladigan matnlar
const (
	msgOnboarding   = "👋 Assalomu alaykum! Men AI yordamchiman.\n\nTanishib olaylik: ismingiz nima?"
	msgNameEmpty    = "Ismingizni matn ko'rinishida yozing, iltimos."
	msgNotAllowed   = "❌ Kirish faqat taklif orqali."
	msgBanned       = "⛔ Siz qoidalarni buzganingiz uchun bloklangansiz."
	msgSlowDown     = "⏳ Juda tez yozyapsiz. Bir necha soniyadan so'ng qayta urinib ko'ring."
	msgQuota        = "AI xizmatida vaqtincha cheklov. Iltimos, birozdan so'ng qayta urinib ko'ring."
	msgTimeout      = "⌛ AI javobi kechikdi. Iltimos, qayta urinib ko'ring."
	msgGenericError = "Kechirasiz, xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	msgEmptyAnswer  = "Kechirasiz, javob bo'sh qaytdi. Savolni boshqacha yozib ko'ring."
)

func msgNamed(name string) string {
	return fmt.Sprintf("Tanishganimdan xursandman, %s! 🙂\n\nEndi savolingizni yozing.", name)
}

func msgWelcomeBack(name string) string {
	return fmt.Sprintf("Yana salom, %s! Savolingizni yozing.", name)
}

func msgWarned(count, max int) string {
	return fmt.Sprintf("⚠️ Ogohlantirish %d/%d: havolalar va taqiqlangan so'zlar mumkin emas. %d ta ogohlantirishdan so'ng bloklanasiz.", count, max, max)
}

func msgGenericErrorWithCode(code string) string {
	return fmt.Sprintf("%s (kod: %s)", msgGenericError, code)
}

func msgRetryLaterWithCode(code string) string {
	return fmt.Sprintf("AI xizmati vaqtincha ishlamayapti. Birozdan so'ng qayta urinib ko'ring. (kod: %s)", code)
}
