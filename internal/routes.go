package internal

import (
	"jobdeck/internal/controllers"
	"jobdeck/internal/providers"
	"net/http"
)

func InitRoutes(state *controllers.StateController, search *controllers.SearchController, browse *controllers.BrowseController, account *controllers.AccountController, profile *controllers.ProfileController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/saved", http.HandlerFunc(state.SavedList))
	routers.Delete("/saved", http.HandlerFunc(state.SavedClear))
	routers.Get("/saved/check", http.HandlerFunc(state.SavedCheck))
	routers.Post("/saved/toggle", http.HandlerFunc(state.SavedToggle))
	routers.Post("/saved/restore", http.HandlerFunc(state.SavedRestore))

	routers.Get("/recent", http.HandlerFunc(state.RecentList))
	routers.Post("/recent", http.HandlerFunc(state.RecentRecord))
	routers.Delete("/recent", http.HandlerFunc(state.RecentDelete))

	routers.Get("/compare", http.HandlerFunc(state.CompareList))
	routers.Post("/compare", http.HandlerFunc(state.CompareAdd))
	routers.Delete("/compare", http.HandlerFunc(state.CompareDelete))

	routers.Get("/history", http.HandlerFunc(search.HistoryList))
	routers.Post("/history", http.HandlerFunc(search.HistoryAdd))
	routers.Delete("/history", http.HandlerFunc(search.HistoryClear))

	routers.Get("/searches", http.HandlerFunc(search.SearchesList))
	routers.Post("/searches", http.HandlerFunc(search.SearchesSave))
	routers.Delete("/searches", http.HandlerFunc(search.SearchesDelete))
	routers.Get("/searches/apply", http.HandlerFunc(search.SearchesApply))

	routers.Get("/browse", http.HandlerFunc(browse.Browse))
	routers.Post("/browse/refresh", http.HandlerFunc(browse.Refresh))
	routers.Get("/locations", http.HandlerFunc(browse.Locations))

	routers.Post("/auth/login", http.HandlerFunc(account.Login))
	routers.Post("/auth/register", http.HandlerFunc(account.Register))
	routers.Post("/auth/logout", http.HandlerFunc(account.Logout))
	routers.Get("/auth/me", http.HandlerFunc(account.Me))

	routers.Get("/admin/users", http.HandlerFunc(account.ListUsers))
	routers.Delete("/admin/users", http.HandlerFunc(account.DeleteUser))
	routers.Post("/admin/users/toggle-active", http.HandlerFunc(account.ToggleActive))
	routers.Post("/admin/users/change-role", http.HandlerFunc(account.ChangeRole))
	routers.Post("/admin/users/bulk-activate", http.HandlerFunc(account.BulkActivate))

	routers.Get("/profiles", http.HandlerFunc(profile.Profiles))
	routers.Get("/notifications", http.HandlerFunc(profile.Notifications))
	return routers
}
