package mongodb

const (
	UsersCollection         = "users"
	ProfilesCollection      = "user_profiles"
	RefreshTokensCollection = "refresh_tokens"
	SocialLinksCollection   = "connected_accounts"
	OrdersCollection        = "payment_orders"
)
