package i18n

var catalog = map[Locale]map[string]string{
	English: {
		"app.title":    "Software Project Planner",
		"app.subtitle": "WBS, schedule and risk analysis for software projects",

		"tabs.chat":  "Chat",
		"tabs.plan":  "Plan",
		"tabs.all":   "All",
		"tabs.wbs":   "WBS",
		"tabs.gantt": "Gantt",
		"tabs.risks": "Risks",

		"buttons.chat": "Ask",
		"buttons.all":  "Generate plan",

		"input.placeholder": "Describe your software project...",
		"chat.placeholder":  "Ask a question about your project...",
		"chat.modeLabel":    "Mode",
		"chat.modes.child":    "Simple",
		"chat.modes.normal":   "Normal",
		"chat.modes.detailed": "Detailed",
		"chat.you":            "You",
		"chat.assistant":      "Assistant",

		"common.noData":  "No data yet",
		"common.loading": "Analyzing...",
		"wbs.noData":     "No WBS data yet. Generate a plan first.",
		"gantt.noData":   "No schedule data yet. Generate a plan first.",
		"risk.noData":    "No risks identified yet.",
		"chat.noData":    "No messages yet. Ask something about your project.",
		"plan.noData":    "No plan generated yet.",

		"project.name":        "Project",
		"project.methodology": "Methodology",
		"project.id":          "ID",
		"project.stats":       "%d phases · %d tasks · %d risks",

		"days":             "days",
		"wbs.resource":     "Resource",
		"wbs.dependencies": "Depends on",
		"wbs.effort.short":  "short",
		"wbs.effort.medium": "medium",
		"wbs.effort.long":   "long",

		"gantt.range":      "%s → %s",
		"gantt.dependsOn":  "after %s",
		"gantt.milestone":  "milestone",

		"risk.table.name":        "Risk",
		"risk.table.category":    "Category",
		"risk.table.probability": "Probability",
		"risk.table.impact":      "Impact",
		"risk.table.mitigation":  "Mitigation",
		"risk.table.owner":       "Owner",
		"risk.total":             "Total risks: %d",

		"status.errorTitle": "Analysis error",
		"status.httpStatus": "HTTP %d",

		"errors.NOT_SOFTWARE_PROJECT": "The description does not look like a software project. Describe an application, system or platform.",
		"errors.SCOPE_TOO_SHORT":      "The description is too short. Add more detail about goals, users and features.",
		"errors.TEXT_TOO_GENERIC":     "The description is too generic. Mention concrete features or constraints.",
		"errors.PARSE_ERROR":          "The analysis service returned a response that could not be read. Try again.",
		"errors.REQUEST_FAILED":       "The analysis service failed to process the request.",
		"errors.API_UNAVAILABLE":      "Could not connect to the server",
		"errors.generic":              "Something went wrong",
		"errors.connectionFailed":     "❌ Could not connect to the server",

		"report.title":        "Project plan: %s",
		"report.scope":        "Scope",
		"report.phase":        "Phase %s: %s",
		"report.schedule":     "Schedule",
		"report.task":         "Task",
		"report.start":        "Start",
		"report.end":          "End",
		"report.generated":    "Generated %s",

		"help.submit":   "submit",
		"help.tab":      "switch tab",
		"help.section":  "plan view",
		"help.mode":     "chat mode",
		"help.lang":     "language",
		"help.clear":    "clear chat",
		"help.scroll":   "scroll",
		"help.quit":     "quit",
		"help.commands": "Commands: /chat /plan /mode <child|normal|detailed> /lang <en|ar> /wbs /gantt /risks /all /clear /help",
		"busy":          "A request is already running. Please wait.",
		"unknownCommand": "Unknown command: %s",
	},
	Arabic: {
		"app.title":    "مخطط مشاريع البرمجيات",
		"app.subtitle": "تحليل هيكل العمل والجدول الزمني والمخاطر لمشاريع البرمجيات",

		"tabs.chat":  "المحادثة",
		"tabs.plan":  "الخطة",
		"tabs.all":   "الكل",
		"tabs.wbs":   "هيكل العمل",
		"tabs.gantt": "مخطط جانت",
		"tabs.risks": "المخاطر",

		"buttons.chat": "اسأل",
		"buttons.all":  "إنشاء الخطة",

		"input.placeholder": "صف مشروعك البرمجي...",
		"chat.placeholder":  "اطرح سؤالاً عن مشروعك...",
		"chat.modeLabel":    "الوضع",
		"chat.modes.child":    "مبسط",
		"chat.modes.normal":   "عادي",
		"chat.modes.detailed": "مفصل",
		"chat.you":            "أنت",
		"chat.assistant":      "المساعد",

		"common.noData":  "لا توجد بيانات بعد",
		"common.loading": "جاري التحليل...",
		"wbs.noData":     "لا توجد بيانات لهيكل العمل بعد. أنشئ الخطة أولاً.",
		"gantt.noData":   "لا توجد بيانات للجدول الزمني بعد. أنشئ الخطة أولاً.",
		"risk.noData":    "لم يتم تحديد مخاطر بعد.",
		"chat.noData":    "لا توجد رسائل بعد. اسأل عن مشروعك.",
		"plan.noData":    "لم يتم إنشاء خطة بعد.",

		"project.name":        "المشروع",
		"project.methodology": "المنهجية",
		"project.id":          "المعرف",
		"project.stats":       "%d مراحل · %d مهام · %d مخاطر",

		"days":             "أيام",
		"wbs.resource":     "المسؤول",
		"wbs.dependencies": "يعتمد على",
		"wbs.effort.short":  "قصير",
		"wbs.effort.medium": "متوسط",
		"wbs.effort.long":   "طويل",

		"gantt.range":     "%s ← %s",
		"gantt.dependsOn": "بعد %s",
		"gantt.milestone": "معلم",

		"risk.table.name":        "الخطر",
		"risk.table.category":    "الفئة",
		"risk.table.probability": "الاحتمالية",
		"risk.table.impact":      "التأثير",
		"risk.table.mitigation":  "التخفيف",
		"risk.table.owner":       "المسؤول",
		"risk.total":             "إجمالي المخاطر: %d",

		"status.errorTitle": "خطأ في التحليل",
		"status.httpStatus": "HTTP %d",

		"errors.NOT_SOFTWARE_PROJECT": "الوصف لا يبدو كمشروع برمجي. صف تطبيقاً أو نظاماً أو منصة.",
		"errors.SCOPE_TOO_SHORT":      "الوصف قصير جداً. أضف تفاصيل أكثر عن الأهداف والمستخدمين والميزات.",
		"errors.TEXT_TOO_GENERIC":     "الوصف عام جداً. اذكر ميزات أو قيوداً محددة.",
		"errors.PARSE_ERROR":          "أعادت خدمة التحليل استجابة غير مقروءة. حاول مرة أخرى.",
		"errors.REQUEST_FAILED":       "فشلت خدمة التحليل في معالجة الطلب.",
		"errors.API_UNAVAILABLE":      "تعذر الاتصال بالسيرفر",
		"errors.generic":              "حدث خطأ",
		"errors.connectionFailed":     "❌ تعذر الاتصال بالسيرفر",

		"report.title":     "خطة المشروع: %s",
		"report.scope":     "النطاق",
		"report.phase":     "المرحلة %s: %s",
		"report.schedule":  "الجدول الزمني",
		"report.task":      "المهمة",
		"report.start":     "البداية",
		"report.end":       "النهاية",
		"report.generated": "أُنشئ في %s",

		"help.submit":    "إرسال",
		"help.tab":       "تبديل التبويب",
		"help.section":   "عرض الخطة",
		"help.mode":      "وضع المحادثة",
		"help.lang":      "اللغة",
		"help.clear":     "مسح المحادثة",
		"help.scroll":    "تمرير",
		"help.quit":      "خروج",
		"help.commands":  "الأوامر: /chat /plan /mode <child|normal|detailed> /lang <en|ar> /wbs /gantt /risks /all /clear /help",
		"busy":           "هناك طلب قيد التنفيذ. يرجى الانتظار.",
		"unknownCommand": "أمر غير معروف: %s",
	},
}
