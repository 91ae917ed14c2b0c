package telegram

import "strings"

const maxUploadSize = 5 * 1024 * 1024

const (
	msgTextOnly       = "Men faqat matnli xabarlarni qabul qilaman. Savolingizni yozib yuboring."
	msgAdminOnly      = "❌ Bu buyruq faqat adminlar uchun."
	msgFileTooLarge   = "❌ Fayl hajmi 5MB dan oshmasligi kerak!"
	msgOnlyXLSX       = "❌ Faqat Excel fayllari (.xlsx) qabul qilinadi!"
	msgDownloadFailed = "❌ Faylni yuklashda xatolik yuz berdi."
	msgTargetUsage    = "Foydalanuvchi ID sini raqam ko'rinishida kiriting. Masalan: /ban 123456789"

	msgHelp = `🤖 Men AI yordamchiman.

Avval ismingizni so'rayman, keyin savollaringizga javob beraman.
Havolalar va reklama taqiqlangan: ogohlantirishlardan so'ng bloklanasiz.

/start - boshlash
/help - yordam`

	msgAdminHelp = `🔧 Admin buyruqlari:
/ban <id> - bloklash
/unban <id> - blokdan chiqarish
/resetwarnings <id> - ogohlantirishlarni tozalash
/forget <id> - yozuvni o'chirish
/status <id> - foydalanuvchi holati
/violations [n] - oxirgi qoidabuzarliklar
/export - Excel hisobot
.xlsx fayl yuborsangiz, taqiqlangan so'zlar ro'yxati almashtiriladi.`
)

func isXLSX(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}
