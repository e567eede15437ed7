package domain

// Сообщения для пользователя (интерфейс Kama на французском).
const (
	MsgAlertsLoadFailed    = "Impossible de charger vos alertes. Les dernières alertes enregistrées sont affichées."
	MsgAlertCreateFailed   = "Impossible de créer l'alerte. Veuillez réessayer."
	MsgAlertDeleteFailed   = "Impossible de supprimer l'alerte. Veuillez réessayer."
	MsgAlertNotFound       = "Alerte introuvable."
	MsgFavoritesLoadFailed = "Impossible de charger vos favoris."
	MsgFavoriteFailed      = "Impossible de mettre à jour vos favoris."
	MsgSearchFailed        = "Impossible de charger les annonces."
	MsgMatchingFailed      = "Impossible de charger les annonces correspondant à vos alertes."
	MsgInvalidRequest      = "Requête invalide."
	MsgLoginRequired       = "Veuillez vous connecter pour continuer."
)
