/*
Package view binds experiments to server-rendered templ components.

Connect wraps a component so that, on every render, the named experiment is
activated for the visitor and the resulting state (experiment, variation,
activation flag) is handed to the component next to its own props:

	banner := view.Connect[BannerProps](client, "Homepage Banner")(
		func(p BannerProps, s view.State) templ.Component {
			return view.Switch(s, map[string]domain.Result[templ.Component]{
				"Variant A": domain.Value(BannerA(p)),
				"default":   domain.Value(BannerDefault(p)),
			})
		},
	)

	templ.Handler(banner(BannerProps{Title: "Welcome"}))

The state is also stored on the render context, so nested components can
read it with StateFromContext without threading it through their props.
*/
package view
