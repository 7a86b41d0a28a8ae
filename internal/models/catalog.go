// internal/models/catalog.go
package models

// WriterRoles are the contributor roles offered on a writer entry.
var WriterRoles = []string{
	"Composer",
	"Lyricist",
	"Producer",
	"Arranger",
	"Co-writer",
	"Writer",
	"Performer",
}

// SocietyOther marks a free-text society entry.
const SocietyOther = "Other"

// ProSocieties lists the performance-rights societies a writer can belong to.
var ProSocieties = []string{
	"ACDAM (Cuba – composers)",
	"ACEMLA (Puerto Rico)",
	"ACUM (Israel)",
	"AEPI (Greece)",
	"AGADU (Uruguay)",
	"AIE (Spain – performers)",
	"AIMCO (Indonesia)",
	"AKM (Austria)",
	"AllTrack (USA)",
	"APDAYC (Peru)",
	"APRA (Australia)",
	"APRA (New Zealand)",
	"APRA AMCOS (Australia/NZ)",
	"ARTISJUS (Hungary)",
	"ASCAP (USA)",
	"BMDA (Burundi)",
	"BMI (USA)",
	"BUMA (Netherlands)",
	"BURIDA (Ivory Coast)",
	"CASH (Hong Kong)",
	"COMPASS (Singapore)",
	"COSBOTS (Copyright Society of Botswana)",
	"COSON (Nigeria)",
	"COTT (Trinidad & Tobago)",
	"EAU (Estonia)",
	"ECAD (Brazil)",
	"FILSCAP (Philippines)",
	"GEA-GRAMMO / ERATO-APOLLON (Greece)",
	"GEMA (Germany)",
	"Global Music Rights (USA)",
	"GMR",
	"GRAMEX (Denmark – neighboring rights)",
	"HDS (Croatia)",
	"IMRO (Ireland)",
	"IPRS (India)",
	"JASRAC (Japan)",
	"KAMP (Kenya Association of Music Producers)",
	"KODA (Denmark)",
	"KOMCA / KOSCAP (South Korea)",
	"LATGA-A (Lithuania)",
	"MACP (Malaysia)",
	"MASA (Malaysia)",
	"MASA (Morocco / Maghreb Authors Society for Composers)",
	"MCSC (China)",
	"MCSK (Music Copyright Society of Kenya)",
	"MCT (Thailand)",
	"MRCSN (Nepal)",
	"MUSICAUTOR (Bulgaria)",
	"MUST (Taiwan)",
	"NORMA (Norway – performers/labels)",
	"ONDA (Cuba)",
	"OSA (Czech Republic)",
	"PPL (UK)",
	"PPCA (Australia)",
	"PRISK (Performers Rights Society of Kenya)",
	"Pro Music Rights (USA)",
	"PRS (UK)",
	"RAO (Russia)",
	"Re:Sound (Canada)",
	"SABAM (Belgium)",
	"SACEM (France)",
	"SACM (Mexico)",
	"SACVEN (Venezuela)",
	"SADAIC (Argentina)",
	"SAYCO / ACINPRO (Colombia)",
	"SCD (Chile)",
	"SENAPI (Bolivia)",
	"SESAC (USA)",
	"SGAE (Spain)",
	"SIAE (Italy)",
	"SOCAN (Canada)",
	"SOKOJ (Serbia)",
	"SOUND EXCHANGE (USA – digital performance royalties)",
	"SOZA (Slovakia)",
	"SPAC (Panama)",
	"STIM (Sweden)",
	"SUISA (Switzerland)",
	"Teosto (Finland)",
	"TONO (Norway)",
	"UACRR (Ukraine)",
	"UCMR (Romania)",
	"WAMI (Indonesia)",
	"YPAC (Mongolia)",
	"ZAIKS (Poland)",
	"ZIMURA (Zimbabwe Music Rights Association)",
	"Other",
}
